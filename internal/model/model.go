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

// Package model defines the typed records shared across the resolver
// pipeline: the tree shape that configuration documents and the merged
// result are made of, and the source-attribution records that point each
// leaf back to the file that contributed it.
package model

import "github.com/jander99/spring-profile-resolver/internal/profileexpr"

// Kind identifies the shape of a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
)

// Node is a single position in a configuration tree. Exactly one of its
// fields is meaningful, selected by Kind:
//
//	KindScalar:   Scalar
//	KindMapping:  Mapping (ordered by first-seen key)
//	KindSequence: Sequence
//
// An interior node is a mapping from string to *Node; a leaf is a scalar
// or a sequence of nodes. Keys are strings. This shape is used both for a
// single document's content and for the accumulator the Merger folds
// documents into.
type Node struct {
	Kind     Kind
	Scalar   any
	Mapping  *OrderedMap
	Sequence []*Node
}

// NewScalar wraps a scalar value (string, int64, float64, bool, or nil).
func NewScalar(v any) *Node {
	return &Node{Kind: KindScalar, Scalar: v}
}

// NewMapping creates an empty mapping node.
func NewMapping() *Node {
	return &Node{Kind: KindMapping, Mapping: NewOrderedMap()}
}

// NewSequence wraps an ordered list of nodes.
func NewSequence(items []*Node) *Node {
	return &Node{Kind: KindSequence, Sequence: items}
}

// IsEmptyMapping reports whether n is a mapping with no entries. Empty
// mappings are legal content (spec.md §4.5: "path exists, no children").
func (n *Node) IsEmptyMapping() bool {
	return n != nil && n.Kind == KindMapping && n.Mapping.Len() == 0
}

// Clone makes a deep copy of n so that mutating the result of a merge
// step never aliases a document's original content.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindMapping:
		out := NewMapping()
		for _, k := range n.Mapping.Keys() {
			v, _ := n.Mapping.Get(k)
			out.Mapping.Set(k, v.Clone())
		}
		return out
	case KindSequence:
		items := make([]*Node, len(n.Sequence))
		for i, item := range n.Sequence {
			items[i] = item.Clone()
		}
		return NewSequence(items)
	default:
		return NewScalar(n.Scalar)
	}
}

// OrderedMap is a string-keyed map that preserves first-insertion order,
// the way a YAML mapping or a properties file's key declarations do.
type OrderedMap struct {
	keys   []string
	values map[string]*Node
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: map[string]*Node{}}
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (*Node, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set inserts or replaces key. Insertion order is preserved for new keys;
// replacing an existing key keeps its original position.
func (m *OrderedMap) Set(key string, v *Node) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key, if present.
func (m *OrderedMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// ConfigSource points back to the document that contributed a leaf:
// the file it came from, its document index within that file, and
// (when known) the line number the key appeared on. Sources are value
// objects; two sources are equal when their Path and DocumentIndex match.
type ConfigSource struct {
	Path          string
	DocumentIndex int
	Line          int
	RelPath       string
}

// Equal reports whether two sources identify the same document.
func (s ConfigSource) Equal(o ConfigSource) bool {
	return s.Path == o.Path && s.DocumentIndex == o.DocumentIndex
}

// ConfigDocument is a single logical document: one YAML sub-document or
// one `#---`-delimited section of a properties file.
type ConfigDocument struct {
	Content         *Node
	Activation      *profileexpr.Expr
	OnCloudPlatform string
	SourceFile      string
	DocumentIndex   int
	IsTest          bool
}

// Source builds the ConfigSource identifying this document.
func (d *ConfigDocument) Source() ConfigSource {
	return ConfigSource{Path: d.SourceFile, DocumentIndex: d.DocumentIndex}
}

// WarningCategory groups warnings for the end-of-run summary (spec.md §7).
type WarningCategory string

const (
	WarnParse         WarningCategory = "parse"
	WarnRestriction    WarningCategory = "restriction"
	WarnUnknownProfile WarningCategory = "unknown-profile"
	WarnPlaceholder    WarningCategory = "placeholder"
	WarnImport         WarningCategory = "import"
	WarnCloudPlatform  WarningCategory = "cloud-platform"
)

// Warning is a single accumulated, non-fatal diagnostic.
type Warning struct {
	Category WarningCategory
	Message  string
	Source   *ConfigSource
}

// ResolverResult is the final output of a resolver run.
type ResolverResult struct {
	Config         *Node
	Sources        map[string]ConfigSource
	Overridden     map[string]bool
	Warnings       []Warning
	ActiveProfiles []string
}
