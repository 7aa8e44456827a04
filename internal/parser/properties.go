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

package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magiconair/properties"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

func init() {
	// Our own Placeholders component (internal/placeholder) implements
	// spec.md §4.6's ${name:default} semantics; magiconair's built-in
	// expansion uses a different, simpler syntax and would otherwise
	// consume our placeholders before we ever see them.
	properties.DisableExpansion = true
}

// readPropertiesDocuments splits on lines matching ^#--- or ^!--- (also a
// full-line marker, spec.md §4.1), parses each section with
// magiconair/properties (which already honors line continuations and
// \uXXXX escapes), then unflattens each section's dotted keys into a
// model.Node tree.
func readPropertiesDocuments(path string, data []byte) ([]*model.Node, error) {
	sections := splitPropertiesSections(string(data))

	out := make([]*model.Node, 0, len(sections))
	for _, section := range sections {
		p, err := properties.LoadString(section)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		root := model.NewMapping()
		for _, key := range p.Keys() {
			val, _ := p.Get(key)
			if err := insertPropertyValue(root, splitPropertyKey(key), val); err != nil {
				return nil, fmt.Errorf("%s: key %q: %w", path, key, err)
			}
		}
		out = append(out, root)
	}
	return out, nil
}

// splitPropertiesSections splits raw properties text on a line that is
// exactly (ignoring trailing whitespace) "#---" or "!---".
func splitPropertiesSections(text string) []string {
	lines := strings.Split(text, "\n")
	var sections []string
	var cur strings.Builder
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed == "#---" || trimmed == "!---" {
			sections = append(sections, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	sections = append(sections, cur.String())
	return sections
}

type propSegment struct {
	name  string
	index *int
}

// splitPropertyKey splits a dotted properties key into segments, each
// optionally carrying an array index ("list[0]" -> name "list", index 0).
func splitPropertyKey(key string) []propSegment {
	parts := strings.Split(key, ".")
	segs := make([]propSegment, 0, len(parts))
	for _, part := range parts {
		name := part
		var idx *int
		if open := strings.IndexByte(part, '['); open >= 0 && strings.HasSuffix(part, "]") {
			if n, err := strconv.Atoi(part[open+1 : len(part)-1]); err == nil {
				name = part[:open]
				idx = &n
			}
		}
		segs = append(segs, propSegment{name: name, index: idx})
	}
	return segs
}

// insertPropertyValue walks/builds the tree for a single dotted key and
// assigns its string value at the leaf, growing sequences as needed for
// indexed segments.
func insertPropertyValue(root *model.Node, segs []propSegment, value string) error {
	cur := root
	for i, seg := range segs {
		last := i == len(segs)-1

		if seg.index == nil {
			if last {
				cur.Mapping.Set(seg.name, model.NewScalar(value))
				return nil
			}
			next, ok := cur.Mapping.Get(seg.name)
			if !ok || next.Kind != model.KindMapping {
				next = model.NewMapping()
				cur.Mapping.Set(seg.name, next)
			}
			cur = next
			continue
		}

		seqNode, ok := cur.Mapping.Get(seg.name)
		if !ok || seqNode.Kind != model.KindSequence {
			seqNode = model.NewSequence(nil)
			cur.Mapping.Set(seg.name, seqNode)
		}
		for len(seqNode.Sequence) <= *seg.index {
			seqNode.Sequence = append(seqNode.Sequence, model.NewScalar(""))
		}
		if last {
			seqNode.Sequence[*seg.index] = model.NewScalar(value)
			return nil
		}
		elem := seqNode.Sequence[*seg.index]
		if elem.Kind != model.KindMapping {
			elem = model.NewMapping()
			seqNode.Sequence[*seg.index] = elem
		}
		cur = elem
	}
	return nil
}
