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

// Package placeholder implements spec.md §4.6: recursive ${name} /
// ${name:default} expansion over the merged tree, falling back to an
// environment overlay, with nested placeholders, multi-pass iteration,
// and cycle detection. conf/conf.go's package doc describes exactly this
// contract ("Recursive ${} substitution... Type-aware defaults... Chained
// defaults (${A:=${B:=C}})") for its own flat string store; this package
// is the from-scratch implementation of that contract over our tree +
// source-map shape.
package placeholder

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

const defaultMaxIterations = 10

// Env is the environment overlay placeholders fall back to when a name
// isn't found in the merged tree (spec.md §4.6).
type Env interface {
	Lookup(name string) (string, bool)
}

// Resolve expands every placeholder reachable from tree's leaves,
// in place, returning warnings for anything left unresolved after
// maxIterations passes (0 means defaultMaxIterations).
func Resolve(tree *model.Node, env Env, maxIterations int) []model.Warning {
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	r := &resolver{tree: tree, env: env}

	for pass := 0; pass < maxIterations; pass++ {
		r.changed = false
		r.walk(tree, "", false)
		if !r.changed {
			break
		}
	}
	// Commit pass: whatever remains unresolved after the budget is spent
	// is left literal and reported once per path, quoting that path's
	// original value; several unresolved placeholders in one value share a
	// single warning rather than getting one each.
	r.walk(tree, "", true)

	paths := make([]string, 0, len(r.unresolved))
	for path := range r.unresolved {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var warnings []model.Warning
	for _, path := range paths {
		warnings = append(warnings, model.Warning{
			Category: model.WarnPlaceholder,
			Message:  fmt.Sprintf("%s: unresolved placeholder %s", path, r.unresolved[path]),
		})
	}
	return warnings
}

type resolver struct {
	tree       *model.Node
	env        Env
	changed    bool
	unresolved map[string]string
}

func (r *resolver) walk(n *model.Node, path string, final bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case model.KindMapping:
		for _, k := range n.Mapping.Keys() {
			v, _ := n.Mapping.Get(k)
			child := k
			if path != "" {
				child = path + "." + k
			}
			r.walk(v, child, final)
		}
	case model.KindSequence:
		for i, v := range n.Sequence {
			r.walk(v, fmt.Sprintf("%s[%d]", path, i), final)
		}
	case model.KindScalar:
		s, ok := n.Scalar.(string)
		if !ok || !containsPlaceholder(s) {
			return
		}
		out, fullyScalar, resolvedFully := r.expand(s, path, map[string]bool{})
		if resolvedFully {
			if out != s {
				r.changed = true
			}
			if fullyScalar {
				n.Scalar = retype(out)
			} else {
				n.Scalar = out
			}
			if r.unresolved != nil {
				delete(r.unresolved, path)
			}
			return
		}
		if final {
			n.Scalar = out
			if r.unresolved == nil {
				r.unresolved = map[string]string{}
			}
			r.unresolved[path] = s
		}
	}
}

func containsPlaceholder(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '$' && s[i+1] == '{' {
			return true
		}
	}
	return false
}

// expand performs one left-to-right pass over s, replacing every
// top-level ${...} it finds. fullyScalar is true when the entire string
// was exactly one placeholder (so scalar re-typing in §4.6 applies); ok
// is false only if an unresolved placeholder remains after this pass
// (the caller keeps the literal and retries on the next pass).
func (r *resolver) expand(s string, path string, stack map[string]bool) (string, bool, bool) {
	out := ""
	i := 0
	allOK := true
	sawOne := false
	exactlyOne := s != "" && isWholePlaceholder(s)

	for i < len(s) {
		start := indexPlaceholder(s, i)
		if start < 0 {
			out += s[i:]
			break
		}
		out += s[i:start]
		end, ok := matchingClose(s, start)
		if !ok {
			out += s[start:]
			break
		}
		sawOne = true
		inner := s[start+2 : end]
		name, def, hasDef := splitNameDefault(inner)

		// Resolve nested placeholders inside name/default first
		// (innermost-first per spec.md §4.6).
		name, nameOK, _ := r.expand(name, path, stack)
		if hasDef {
			def, _, _ = r.expand(def, path, stack)
		}

		key := name
		if stack[key] {
			// Re-entering the same (path, placeholder) pair on the
			// resolution stack is a cycle: leave literal and warn.
			out += s[start : end+1]
			allOK = false
			i = end + 1
			continue
		}

		val, found := r.lookup(name)
		switch {
		case found:
			stack[key] = true
			resolved, ok, _ := r.expand(val, path, stack)
			delete(stack, key)
			if ok {
				out += resolved
			} else {
				out += s[start : end+1]
				allOK = false
			}
		case hasDef:
			out += def
		case nameOK:
			out += s[start : end+1]
			allOK = false
		default:
			out += s[start : end+1]
			allOK = false
		}
		i = end + 1
	}

	if !sawOne {
		return out, false, true
	}
	return out, exactlyOne, allOK
}

func (r *resolver) lookup(name string) (string, bool) {
	if n, ok := model.GetPath(r.tree, name); ok && n.Kind == model.KindScalar {
		return fmt.Sprint(n.Scalar), true
	}
	if r.env != nil {
		if v, ok := r.env.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

func indexPlaceholder(s string, from int) int {
	for i := from; i+1 < len(s); i++ {
		if s[i] == '$' && s[i+1] == '{' {
			return i
		}
	}
	return -1
}

// matchingClose finds the '}' matching the '{' at s[start+1], honoring
// nested ${...} inside it.
func matchingClose(s string, start int) (int, bool) {
	depth := 0
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func isWholePlaceholder(s string) bool {
	if len(s) < 3 || s[0] != '$' || s[1] != '{' || s[len(s)-1] != '}' {
		return false
	}
	_, ok := matchingClose(s, 0)
	return ok && matchingCloseIsLast(s)
}

func matchingCloseIsLast(s string) bool {
	end, ok := matchingClose(s, 0)
	return ok && end == len(s)-1
}

func splitNameDefault(inner string) (name, def string, hasDef bool) {
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ':':
			if depth == 0 {
				return inner[:i], inner[i+1:], true
			}
		}
	}
	return inner, "", false
}

// retype applies spec.md §4.6's scalar re-typing rule: a fully resolved
// value that parses as an integer, float, or boolean takes that type.
func retype(s string) any {
	if i, err := cast.ToInt64E(s); err == nil && isIntLiteral(s) {
		return i
	}
	if b, err := cast.ToBoolE(s); err == nil && isBoolLiteral(s) {
		return b
	}
	if f, err := cast.ToFloat64E(s); err == nil && isFloatLiteral(s) {
		return f
	}
	return s
}

func isIntLiteral(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isBoolLiteral(s string) bool {
	return s == "true" || s == "false"
}

func isFloatLiteral(s string) bool {
	if isIntLiteral(s) {
		return false
	}
	seenDigit, seenDot := false, false
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			seenDigit = true
		case s[i] == '.' && !seenDot:
			seenDot = true
		default:
			return false
		}
	}
	return seenDigit && seenDot
}
