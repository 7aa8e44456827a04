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

// Package merge folds an ordered list of documents into a single tree
// with a parallel source-attribution map, per spec.md §4.5. The fold
// itself is the same shape as gs_conf/conf.go's merge() (later source
// overrides earlier), generalized from a flat key/value store
// (flatten.Storage, keyed by dot-path with one fileID per key) to the
// tree-and-sequence-replacement rules a full document shape needs.
package merge

import (
	"github.com/jander99/spring-profile-resolver/internal/model"
)

// Accumulator holds the in-progress merged tree and its source map.
type Accumulator struct {
	Tree    *model.Node
	Sources map[string]model.ConfigSource
	// Overridden marks paths that were replaced by a later document at
	// least once, for the Output component's non-normative "(overridden)"
	// annotation (spec.md §6).
	Overridden map[string]bool
}

// New creates an empty accumulator.
func New() *Accumulator {
	return &Accumulator{
		Tree:       model.NewMapping(),
		Sources:    map[string]model.ConfigSource{},
		Overridden: map[string]bool{},
	}
}

// Apply folds a single document's content into the accumulator. Later
// calls strictly override earlier ones at the same path (spec.md §4.5's
// tie-break rule); applying the same document twice (e.g. a document that
// legitimately appears once but whose content is re-merged) simply lets
// the second application win, satisfying "equal paths... take the last
// occurrence."
func (a *Accumulator) Apply(content *model.Node, source model.ConfigSource) {
	a.mergeInto(a.Tree, content, "", source)
}

// mergeInto merges override into acc at the given dot-path prefix,
// recording source attribution along the way. acc is mutated in place.
func (a *Accumulator) mergeInto(acc *model.Node, override *model.Node, prefix string, source model.ConfigSource) {
	if override == nil {
		return
	}

	if override.Kind == model.KindMapping && acc.Kind == model.KindMapping {
		if override.Mapping.Len() == 0 {
			// Empty mapping values are legal and do not blank out prior
			// sub-trees (spec.md §4.5) unless this path had no prior
			// value at all, in which case it's recorded as an empty leaf.
			if prefix != "" && acc.IsEmptyMapping() {
				if _, hasSource := a.Sources[prefix]; !hasSource {
					a.setLeaf(prefix, override, source)
				}
			}
			return
		}
		for _, key := range override.Mapping.Keys() {
			childOverride, _ := override.Mapping.Get(key)
			childPath := key
			if prefix != "" {
				childPath = prefix + "." + key
			}
			existingChild, hasChild := acc.Mapping.Get(key)
			if !hasChild {
				existingChild = model.NewMapping()
				acc.Mapping.Set(key, existingChild)
			}
			a.mergeInto(existingChild, childOverride, childPath, source)
		}
		return
	}

	// Any × Scalar, Any × Sequence, Scalar × Mapping: replace wholesale.
	// The override wins outright; anything the displaced value owned in
	// the source map is removed first.
	a.replace(prefix, acc, override, source)
}

// replace installs override's value at prefix inside the parent acc node,
// removing any source-map entries the displaced value owned.
func (a *Accumulator) replace(prefix string, acc *model.Node, override *model.Node, source model.ConfigSource) {
	if _, existed := a.Sources[prefix]; existed || !acc.IsEmptyMapping() {
		a.Overridden[prefix] = true
	}
	a.clearSources(prefix, acc)

	clone := override.Clone()
	if prefix == "" {
		*acc = *clone
	} else {
		model.SetPath(a.Tree, prefix, clone)
	}
	a.setLeaf(prefix, clone, source)
}

// clearSources removes every source-map entry at or beneath prefix,
// reflecting that a wholesale replacement invalidates the displaced
// subtree's attribution (spec.md §4.5: "every path beneath it is removed
// from the source map").
func (a *Accumulator) clearSources(prefix string, existing *model.Node) {
	if prefix == "" {
		for k := range a.Sources {
			delete(a.Sources, k)
		}
		return
	}
	delete(a.Sources, prefix)
	if existing == nil || existing.Kind != model.KindMapping {
		return
	}
	for _, k := range existing.Mapping.Keys() {
		child, _ := existing.Mapping.Get(k)
		a.clearSources(prefix+"."+k, child)
	}
}

// setLeaf records the source for every leaf beneath (or at) prefix in the
// freshly-installed subtree.
func (a *Accumulator) setLeaf(prefix string, n *model.Node, source model.ConfigSource) {
	model.WalkLeaves(n, prefix, func(path string, _ *model.Node) {
		a.Sources[path] = source
	})
}
