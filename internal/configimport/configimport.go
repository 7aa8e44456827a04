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

// Package configimport resolves spring.config.import directives,
// splicing the imported file's documents into the document stream
// immediately after the importing document (spec.md §4.7). The
// scheme-prefix parsing (optional:provider:path) is adapted directly from
// conf/provider/provider.go's strings.SplitN(source, ":", 3) handling.
package configimport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jander99/spring-profile-resolver/internal/model"
	"github.com/jander99/spring-profile-resolver/internal/parser"
)

// ParseFunc loads and parses one file into documents; injected so tests
// can substitute a stub for parser.ParseFile (see ParserAdapter).
// isTest carries the importing document's main/test origin onto the
// spliced-in documents (spec.md §4.4).
type ParseFunc func(path string, isTest bool) ([]*model.ConfigDocument, []model.Warning, error)

// Resolve walks docs in order, expanding any spring.config.import
// directive it finds via parseFile, and returns the spliced stream.
// classpathRoots are searched in order for "classpath:" imports.
func Resolve(docs []*model.ConfigDocument, classpathRoots []string, parseFile ParseFunc) ([]*model.ConfigDocument, []model.Warning, error) {
	r := &resolver{classpathRoots: classpathRoots, parseFile: parseFile}
	out, warnings, err := r.resolve(docs, nil)
	return out, warnings, err
}

type resolver struct {
	classpathRoots []string
	parseFile      ParseFunc
}

// CycleError reports a spring.config.import cycle: the same absolute path
// appearing twice on the current import stack (spec.md §4.7).
type CycleError struct {
	Path string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle at %s", e.Path)
}

func (r *resolver) resolve(docs []*model.ConfigDocument, stack []string) ([]*model.ConfigDocument, []model.Warning, error) {
	var (
		out      []*model.ConfigDocument
		warnings []model.Warning
	)
	for _, doc := range docs {
		out = append(out, doc)

		targets, ok := importTargets(doc.Content)
		if !ok {
			continue
		}
		model.DeletePath(doc.Content, "spring.config.import")
		model.DeleteEmptyAncestors(doc.Content, "spring.config.import", "spring")

		for _, target := range targets {
			optional, scheme, ref := splitTarget(target)

			resolvedPath, err := resolvePath(scheme, ref, doc.SourceFile, r.classpathRoots)
			if err != nil {
				if optional {
					warnings = append(warnings, model.Warning{
						Category: model.WarnImport,
						Message:  fmt.Sprintf("optional import %q: %s", target, err),
					})
					continue
				}
				return nil, warnings, fmt.Errorf("import %q: %w", target, err)
			}

			abs, _ := filepath.Abs(resolvedPath)
			for _, s := range stack {
				if s == abs {
					return nil, warnings, &CycleError{Path: abs}
				}
			}

			imported, parseWarnings, err := r.parseFile(resolvedPath, doc.IsTest)
			if err != nil {
				if os.IsNotExist(err) && optional {
					warnings = append(warnings, model.Warning{
						Category: model.WarnImport,
						Message:  fmt.Sprintf("optional import %q not found", target),
					})
					continue
				}
				if !optional {
					return nil, warnings, fmt.Errorf("import %q: %w", target, err)
				}
				warnings = append(warnings, model.Warning{
					Category: model.WarnImport,
					Message:  fmt.Sprintf("optional import %q: %s", target, err),
				})
				continue
			}
			warnings = append(warnings, parseWarnings...)

			spliced, nestedWarnings, err := r.resolve(imported, append(stack, abs))
			if err != nil {
				return nil, warnings, err
			}
			warnings = append(warnings, nestedWarnings...)
			out = append(out, spliced...)
		}
	}
	return out, warnings, nil
}

// importTargets reads spring.config.import, which may be a scalar or a
// sequence of strings (spec.md §4.7).
func importTargets(content *model.Node) ([]string, bool) {
	n, ok := model.GetPath(content, "spring.config.import")
	if !ok {
		return nil, false
	}
	switch n.Kind {
	case model.KindScalar:
		if s, ok := n.Scalar.(string); ok && s != "" {
			return []string{s}, true
		}
	case model.KindSequence:
		var out []string
		for _, item := range n.Sequence {
			if s, ok := item.Scalar.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out, true
		}
	}
	return nil, false
}

func splitTarget(target string) (optional bool, scheme string, ref string) {
	s := target
	if strings.HasPrefix(s, "optional:") {
		optional = true
		s = strings.TrimPrefix(s, "optional:")
	}
	if i := strings.Index(s, ":"); i >= 0 {
		scheme = s[:i]
		ref = s[i+1:]
	} else {
		scheme = "file"
		ref = s
	}
	return optional, scheme, ref
}

func resolvePath(scheme, ref, importingFile string, classpathRoots []string) (string, error) {
	switch scheme {
	case "file":
		if filepath.IsAbs(ref) {
			return ref, nil
		}
		return filepath.Join(filepath.Dir(importingFile), ref), nil
	case "classpath":
		for _, root := range classpathRoots {
			candidate := filepath.Join(root, ref)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		return "", os.ErrNotExist
	default:
		return "", fmt.Errorf("unsupported import scheme %q", scheme)
	}
}

// ParserAdapter exposes parser.ParseFile as a ParseFunc.
func ParserAdapter() ParseFunc {
	return parser.ParseFile
}
