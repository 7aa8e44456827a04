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

package model

import "strings"

// SplitPath splits a dot-path such as "server.ssl.enabled" into its
// segments. Sequence indices are not part of the source map's path
// vocabulary (spec.md §3), so this is a plain '.' split.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// JoinPath joins segments back into a dot-path.
func JoinPath(segments ...string) string {
	return strings.Join(segments, ".")
}

// GetPath descends a mapping tree along a dot-path, returning the node at
// that path and whether it exists.
func GetPath(n *Node, path string) (*Node, bool) {
	segs := SplitPath(path)
	cur := n
	for _, s := range segs {
		if cur == nil || cur.Kind != KindMapping {
			return nil, false
		}
		v, ok := cur.Mapping.Get(s)
		if !ok {
			return nil, false
		}
		cur = v
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// EnsureMappingPath descends a dot-path, creating intermediate mapping
// nodes as needed, and returns the mapping that should hold the final
// segment's key (the caller still performs the Set/Get on that key).
// Returns false if an intermediate segment already exists as a non-mapping
// node (a scalar or sequence occupying a path that needs to be a mapping).
func EnsureMappingPath(root *Node, segs []string) (*OrderedMap, bool) {
	cur := root
	for _, s := range segs {
		if cur.Kind != KindMapping {
			return nil, false
		}
		next, ok := cur.Mapping.Get(s)
		if !ok {
			next = NewMapping()
			cur.Mapping.Set(s, next)
		} else if next.Kind != KindMapping {
			return nil, false
		}
		cur = next
	}
	return cur.Mapping, true
}

// SetPath sets the value at a dot-path in a mapping tree, creating
// intermediate mappings as needed. Returns false if an intermediate
// segment is occupied by a non-mapping node.
func SetPath(root *Node, path string, v *Node) bool {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return false
	}
	parent, ok := EnsureMappingPath(root, segs[:len(segs)-1])
	if !ok {
		return false
	}
	parent.Set(segs[len(segs)-1], v)
	return true
}

// DeletePath removes the node at a dot-path, if present.
func DeletePath(root *Node, path string) bool {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return false
	}
	cur := root
	for _, s := range segs[:len(segs)-1] {
		if cur.Kind != KindMapping {
			return false
		}
		next, ok := cur.Mapping.Get(s)
		if !ok {
			return false
		}
		cur = next
	}
	if cur.Kind != KindMapping {
		return false
	}
	last := segs[len(segs)-1]
	if _, ok := cur.Mapping.Get(last); !ok {
		return false
	}
	cur.Mapping.Delete(last)
	return true
}

// DeleteEmptyAncestors removes trailing empty mapping ancestors of path,
// stopping at (and never deleting) stopAt. Used after stripping a
// directive key such as "spring.config.activate.on-profile" to avoid
// leaving a husk of now-empty parent mappings ("config", "activate") in
// the tree exposed to callers.
func DeleteEmptyAncestors(root *Node, path string, stopAt string) {
	segs := SplitPath(path)
	for len(segs) > 1 {
		segs = segs[:len(segs)-1]
		p := JoinPath(segs...)
		if p == stopAt {
			return
		}
		n, ok := GetPath(root, p)
		if !ok || !n.IsEmptyMapping() {
			return
		}
		DeletePath(root, p)
	}
}

// WalkLeaves visits every leaf (scalar or sequence) in the tree, calling
// fn with its dot-path. Mapping interiors are not visited themselves.
func WalkLeaves(n *Node, prefix string, fn func(path string, leaf *Node)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindMapping:
		if n.Mapping.Len() == 0 {
			fn(prefix, n)
			return
		}
		for _, k := range n.Mapping.Keys() {
			v, _ := n.Mapping.Get(k)
			child := k
			if prefix != "" {
				child = prefix + "." + k
			}
			WalkLeaves(v, child, fn)
		}
	default:
		fn(prefix, n)
	}
}
