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
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

// readYAMLDocuments splits data on YAML's native `---` document markers
// by decoding repeatedly, the way awsqed-config-formatter walks a
// yaml.Node tree, and converts each document into a model.Node.
func readYAMLDocuments(path string, data []byte) ([]*model.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var out []*model.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		n, err := yamlNodeToModel(&doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// yamlNodeToModel converts a decoded yaml.Node into a model.Node,
// preserving mapping key order. A DocumentNode is unwrapped to its single
// child; a null scalar (an empty document) becomes an empty mapping per
// spec.md §4.1's "entirely empty document yields empty content" rule.
func yamlNodeToModel(n *yaml.Node) (*model.Node, error) {
	if n == nil {
		return model.NewMapping(), nil
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 || (n.Content[0].Kind == yaml.ScalarNode && n.Content[0].Tag == "!!null") {
			return model.NewMapping(), nil
		}
		return yamlNodeToModel(n.Content[0])
	}

	switch n.Kind {
	case yaml.MappingNode:
		out := model.NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, fmt.Errorf("mapping key at line %d: %w", keyNode.Line, err)
			}
			val, err := yamlNodeToModel(valNode)
			if err != nil {
				return nil, err
			}
			out.Mapping.Set(key, val)
		}
		return out, nil

	case yaml.SequenceNode:
		items := make([]*model.Node, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := yamlNodeToModel(c)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return model.NewSequence(items), nil

	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return model.NewScalar(nil), nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("scalar at line %d: %w", n.Line, err)
		}
		if i, ok := v.(int); ok {
			v = int64(i)
		}
		return model.NewScalar(v), nil

	case yaml.AliasNode:
		return yamlNodeToModel(n.Alias)

	default:
		return model.NewMapping(), nil
	}
}
