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

// Package parser reads application*.{yml,yaml,properties} files into
// ordered lists of model.ConfigDocument, splitting multi-document files
// and extracting each document's activation expression. Modeled on
// conf/reader/reader.go's extension-keyed Reader registry.
package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-spring/stdlib/errutil"
	"github.com/jander99/spring-profile-resolver/internal/model"
)

// Reader parses raw file bytes into an ordered list of documents, not yet
// enriched with activation data (that step is shared across formats, see
// activation.go).
type Reader func(path string, data []byte) ([]*model.Node, error)

var readers = map[string]Reader{
	".yml":        readYAMLDocuments,
	".yaml":       readYAMLDocuments,
	".properties": readPropertiesDocuments,
}

// ParseFile reads a configuration file and returns its documents, each
// with its activation directive extracted per spec.md §4.1. isTest marks
// every resulting document as originating from a src/test/resources root
// (discovery.File.IsTest or, for a spliced import, the importing
// document's origin), so spec.md §4.4's main-only restriction on
// spring.profiles.group collection can be enforced downstream.
//
// Returns (nil, nil, os.ErrNotExist-wrapping-err) if the file is missing
// — callers decide whether that's an error (Discovery only enumerates
// files that exist, but Imports may reference one that doesn't).
func ParseFile(path string, isTest bool) ([]*model.ConfigDocument, []model.Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	ext := filepath.Ext(path)
	r, ok := readers[ext]
	if !ok {
		err := errutil.Explain(nil, "unsupported file type %s", ext)
		return nil, nil, errutil.Explain(err, "parse file %s error", path)
	}

	nodes, err := r(path, data)
	if err != nil {
		return nil, nil, errutil.Explain(err, "parse file %s error", path)
	}

	var (
		docs     []*model.ConfigDocument
		warnings []model.Warning
	)
	for i, n := range nodes {
		doc, docWarnings, skip, err := extractActivation(n, path, i, isTest)
		if err != nil {
			warnings = append(warnings, model.Warning{
				Category: model.WarnParse,
				Message:  fmt.Sprintf("%s[%d]: %s", path, i, err),
			})
			continue
		}
		warnings = append(warnings, docWarnings...)
		if skip {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, warnings, nil
}
