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

// Package profiles expands a requested profile list through
// spring.profiles.group.* definitions (depth-first, cycle-detecting, per
// spec.md §4.4) and filters documents down to those applicable to the
// resulting active set. The active-profile splitting itself is the same
// idea as gs/internal/gs_conf/conf.go's loadFiles
// (strings.SplitSeq(strActiveProfiles, ",")), generalized to also chase
// groups.
package profiles

import (
	"fmt"
	"strings"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

// Groups maps a profile name to its ordered member list, collected only
// from base documents of main resources (spec.md §4.4).
type Groups map[string][]string

// CycleError reports a circular spring.profiles.group reference.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular profile group: %s", strings.Join(e.Chain, " -> "))
}

// Expand produces the active profile list from the requested profiles and
// the collected group table, per the depth-first algorithm in spec.md
// §4.4: a group's parent is emitted before its members, duplicates are
// suppressed keeping the first occurrence's position, and a profile
// revisited while still being expanded is a hard cycle error.
func Expand(requested []string, groups Groups) ([]string, error) {
	var (
		emit     []string
		emitted  = map[string]bool{}
		visiting = map[string]bool{}
		chain    []string
	)

	var expand func(p string) error
	expand = func(p string) error {
		if visiting[p] {
			return &CycleError{Chain: append(append([]string{}, chain...), p)}
		}
		if emitted[p] {
			return nil
		}
		emit = append(emit, p)
		emitted[p] = true

		if members, ok := groups[p]; ok {
			visiting[p] = true
			chain = append(chain, p)
			for _, m := range members {
				if err := expand(m); err != nil {
					return err
				}
			}
			chain = chain[:len(chain)-1]
			visiting[p] = false
		}
		return nil
	}

	for _, p := range requested {
		if err := expand(p); err != nil {
			return nil, err
		}
	}
	return emit, nil
}

// ActiveSet builds the map[string]bool membership test profileexpr.Expr
// evaluates against.
func ActiveSet(active []string) map[string]bool {
	set := make(map[string]bool, len(active))
	for _, p := range active {
		set[p] = true
	}
	return set
}

// CollectGroups merges spring.profiles.group.* tables from the base
// documents of main-root files, in discovery order (later wins on
// conflicting sub-keys — spec.md §9 Open Question (i): ambiguous source
// material, resolved here as ordered-fold merge of the group tables
// themselves).
func CollectGroups(docs []*model.ConfigDocument, isBaseMainDoc func(*model.ConfigDocument) bool) Groups {
	groups := Groups{}
	for _, doc := range docs {
		if !isBaseMainDoc(doc) {
			continue
		}
		groupNode, ok := model.GetPath(doc.Content, "spring.profiles.group")
		if !ok || groupNode.Kind != model.KindMapping {
			continue
		}
		for _, name := range groupNode.Mapping.Keys() {
			v, _ := groupNode.Mapping.Get(name)
			groups[name] = memberList(v)
		}
	}
	return groups
}

func memberList(n *model.Node) []string {
	switch n.Kind {
	case model.KindSequence:
		var out []string
		for _, item := range n.Sequence {
			if s, ok := item.Scalar.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case model.KindScalar:
		if s, ok := n.Scalar.(string); ok {
			var out []string
			for _, part := range strings.Split(s, ",") {
				part = strings.TrimSpace(part)
				if part != "" {
					out = append(out, part)
				}
			}
			return out
		}
	}
	return nil
}

// Filter returns the documents applicable to the active set, in their
// original order: a document is applicable iff it has no activation or
// its activation evaluates true (spec.md §4.4).
func Filter(docs []*model.ConfigDocument, active map[string]bool) []*model.ConfigDocument {
	var out []*model.ConfigDocument
	for _, doc := range docs {
		if doc.Activation == nil || doc.Activation.Eval(active) {
			out = append(out, doc)
		}
	}
	return out
}
