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

// Package ruletable is a concrete analyzer.Analyzer backed by
// github.com/expr-lang/expr: each rule names a dot-path and an expression
// over its value, `$`, mirroring conf/conf.go's documented `expr:"$ > 0 &&
// $ < 65535"` struct-tag convention but evaluated against the resolved
// tree rather than a decoded Go struct.
package ruletable

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/jander99/spring-profile-resolver/internal/analyzer"
	"github.com/jander99/spring-profile-resolver/internal/model"
)

// Rule pairs a dot-path with an expr-lang boolean expression over `$`
// (the value at that path) and `env` (the full resolved tree, flattened
// to map[string]any, for cross-path rules).
type Rule struct {
	Path       string
	Expression string
	Message    string
}

// Table is an Analyzer compiling and evaluating a fixed set of Rules.
type Table struct {
	name  string
	rules []Rule
	progs []*vm.Program
}

// Compile parses every rule's expression up front so a malformed rule
// table fails fast, before any tree is analyzed.
func Compile(name string, rules []Rule) (*Table, error) {
	progs := make([]*vm.Program, len(rules))
	for i, r := range rules {
		env := map[string]any{"$": nil, "env": map[string]any{}}
		prog, err := expr.Compile(r.Expression, expr.Env(env), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rule %q (%s): %w", r.Path, r.Expression, err)
		}
		progs[i] = prog
	}
	return &Table{name: name, rules: rules, progs: progs}, nil
}

func (t *Table) Name() string { return t.name }

// Analyze evaluates every rule whose path exists in the resolved tree,
// recording a Finding for each rule whose expression evaluates false.
func (t *Table) Analyze(result *model.ResolverResult) ([]analyzer.Finding, error) {
	flat := flatten(result.Config)

	var findings []analyzer.Finding
	for i, r := range t.rules {
		n, ok := model.GetPath(result.Config, r.Path)
		if !ok {
			continue
		}
		if n.Kind != model.KindScalar {
			continue
		}
		out, err := expr.Run(t.progs[i], map[string]any{"$": n.Scalar, "env": flat})
		if err != nil {
			return nil, fmt.Errorf("evaluate rule %q: %w", r.Path, err)
		}
		if pass, ok := out.(bool); !ok || !pass {
			findings = append(findings, analyzer.Finding{
				Path:    r.Path,
				Rule:    r.Expression,
				Message: r.Message,
			})
		}
	}
	return findings, nil
}

// flatten reduces the resolved tree to a flat dot-path -> scalar map so
// rule expressions can reference other paths via `env["other.path"]`.
func flatten(n *model.Node) map[string]any {
	out := map[string]any{}
	model.WalkLeaves(n, "", func(path string, leaf *model.Node) {
		if leaf.Kind == model.KindScalar {
			out[path] = leaf.Scalar
		}
	})
	return out
}
