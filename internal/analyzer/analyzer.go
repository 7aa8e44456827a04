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

// Package analyzer is the pluggable post-resolution check plug point:
// conf/conf.go's package doc describes a per-field "expr tag" validation
// system ($ > 0 && $ < 65535); this generalizes that idea from per-struct
// field tags to per-path rules evaluated over the resolved tree, run only
// when the caller opts in (the CLI's --analyze flag).
package analyzer

import "github.com/jander99/spring-profile-resolver/internal/model"

// Finding is one analyzer observation about the resolved tree.
type Finding struct {
	Path    string
	Rule    string
	Message string
}

// Analyzer inspects a resolved configuration tree and its source map,
// returning zero or more findings. It never mutates the tree.
type Analyzer interface {
	Name() string
	Analyze(result *model.ResolverResult) ([]Finding, error)
}

// RunAll runs every analyzer in order and concatenates their findings.
// An individual analyzer's error aborts the whole run with that error,
// since an analyzer that can't evaluate its rules has nothing useful to
// report.
func RunAll(analyzers []Analyzer, result *model.ResolverResult) ([]Finding, error) {
	var findings []Finding
	for _, a := range analyzers {
		f, err := a.Analyze(result)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f...)
	}
	return findings, nil
}
