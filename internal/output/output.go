/*
 * Copyright 2024 The Go-Spring Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package output serializes a merged configuration tree back to YAML with
// source-attribution comments (spec.md §6): a block "# From:" comment when
// a whole mapping shares one source, per-leaf inline comments when it
// doesn't. The yaml.Node construction and indent/encoder setup is the same
// approach formatter/formatter.go uses to reformat an existing tree —
// here it builds the tree from scratch from our model.Node plus source
// map instead of reformatting a parsed one.
package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

const defaultIndent = 2

// Render serializes result.Config as annotated YAML. relPath maps a
// ConfigSource to the relative path string the comments should display.
func Render(result *model.ResolverResult, relPath func(model.ConfigSource) string) ([]byte, error) {
	r := &renderer{sources: result.Sources, overridden: result.Overridden, relPath: relPath}
	doc := r.build(result.Config, "")

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(defaultIndent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return buf.Bytes(), nil
}

type renderer struct {
	sources    map[string]model.ConfigSource
	overridden map[string]bool
	relPath    func(model.ConfigSource) string
	// inBlock is set while building beneath a mapping that already carries
	// a block comment, so nested uniformly-sourced mappings don't repeat it.
	inBlock bool
}

// build converts n into a yaml.Node. path is n's dot-path ("" at the root).
func (r *renderer) build(n *model.Node, path string) *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch n.Kind {
	case model.KindMapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if path != "" && !r.inBlock {
			if src, sole := r.soleSource(n, path); sole {
				node.HeadComment = r.blockCommentText(path, src)
				r.inBlock = true
				defer func() { r.inBlock = false }()
			}
		}
		for _, k := range n.Mapping.Keys() {
			v, _ := n.Mapping.Get(k)
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
			valNode := r.build(v, childPath)
			if valNode.Kind != yaml.MappingNode || !r.hasBlockComment(v, childPath) {
				r.annotateLeafwise(v, childPath, valNode)
			}
			node.Content = append(node.Content, keyNode, valNode)
		}
		return node
	case model.KindSequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range n.Sequence {
			node.Content = append(node.Content, r.build(item, fmt.Sprintf("%s[%d]", path, i)))
		}
		return node
	default:
		return scalarNode(n.Scalar)
	}
}

// hasBlockComment reports whether build already attached a HeadComment to
// v's rendered mapping node (so the caller skips redundant per-leaf
// comments beneath it).
func (r *renderer) hasBlockComment(n *model.Node, path string) bool {
	if n == nil || n.Kind != model.KindMapping {
		return false
	}
	_, sole := r.soleSource(n, path)
	return sole
}

// annotateLeafwise attaches inline "# <relative-path>" comments to every
// leaf beneath valNode whose subtree did not already get a block comment.
func (r *renderer) annotateLeafwise(n *model.Node, path string, valNode *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case model.KindMapping:
		if _, sole := r.soleSource(n, path); sole {
			return
		}
		for i, k := range n.Mapping.Keys() {
			v, _ := n.Mapping.Get(k)
			childPath := path + "." + k
			child := valNode.Content[2*i+1]
			r.annotateLeafwise(v, childPath, child)
		}
	case model.KindSequence:
		for i, item := range n.Sequence {
			r.annotateLeafwise(item, fmt.Sprintf("%s[%d]", path, i), valNode.Content[i])
		}
	default:
		if src, ok := r.sources[path]; ok {
			valNode.LineComment = r.inlineCommentText(path, src)
		}
	}
}

// soleSource reports whether every leaf beneath (and including) path
// shares exactly one ConfigSource, and returns it.
func (r *renderer) soleSource(n *model.Node, path string) (model.ConfigSource, bool) {
	var (
		found model.ConfigSource
		seen  bool
		ok    = true
	)
	model.WalkLeaves(n, path, func(leafPath string, _ *model.Node) {
		src, has := r.sources[leafPath]
		if !has {
			ok = false
			return
		}
		if !seen {
			found = src
			seen = true
			return
		}
		if !src.Equal(found) {
			ok = false
		}
	})
	return found, ok && seen
}

// blockCommentText builds the "# From: <relative-path>" comment that
// precedes a mapping whose leaves all share one source (spec.md §6).
func (r *renderer) blockCommentText(path string, src model.ConfigSource) string {
	text := "From: " + r.relPath(src)
	if r.overridden[path] {
		text += " (overridden)"
	}
	return text
}

// inlineCommentText builds the bare "# <relative-path>" comment attached
// to an individual leaf when its siblings come from different sources
// (spec.md §6) — no "From:" prefix, which is reserved for the block form.
func (r *renderer) inlineCommentText(path string, src model.ConfigSource) string {
	text := r.relPath(src)
	if r.overridden[path] {
		text += " (overridden)"
	}
	return text
}

func scalarNode(v any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch val := v.(type) {
	case nil:
		n.Tag = "!!null"
		n.Value = "null"
	case string:
		n.Tag = "!!str"
		n.Value = val
	case bool:
		n.Tag = "!!bool"
		if val {
			n.Value = "true"
		} else {
			n.Value = "false"
		}
	case int64:
		n.Tag = "!!int"
		n.Value = fmt.Sprintf("%d", val)
	case float64:
		n.Tag = "!!float"
		n.Value = fmt.Sprintf("%v", val)
	default:
		n.Tag = "!!str"
		n.Value = fmt.Sprint(val)
	}
	return n
}

