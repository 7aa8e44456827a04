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

// Package discovery enumerates application*.{yml,yaml,properties} files
// under a set of resource roots, the way gs/internal/gs_conf/conf.go's
// getAppFiles builds candidate file lists — generalized from a fixed
// "app" prefix and fixed profile list to arbitrary roots, the
// application*/application-* naming of spec.md §4.2, and the
// main-then-test root ordering of spec.md §5's determinism requirement.
package discovery

import (
	"path/filepath"
	"sort"
)

var extensions = []string{".yml", ".yaml", ".properties"}

// Root is one resource directory to scan, tagged so callers (notably
// Profiles, which only collects spring.profiles.group.* from base
// documents of main resources) know whether it's a main or test root.
type Root struct {
	Dir    string
	IsTest bool
}

// File is one discovered configuration file.
type File struct {
	Path   string
	IsTest bool
}

// Discover enumerates application.{yml,yaml,properties} and
// application-*.{yml,yaml,properties} under each root, main roots first
// in the order given, then test roots last. Within a root, entries are
// sorted lexicographically so that discovery is deterministic across
// otherwise-equivalent filesystems (spec.md §5).
func Discover(roots []Root) ([]File, error) {
	var (
		mainFiles []File
		testFiles []File
	)
	for _, root := range roots {
		names, err := scanRoot(root.Dir)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			f := File{Path: filepath.Join(root.Dir, name), IsTest: root.IsTest}
			if root.IsTest {
				testFiles = append(testFiles, f)
			} else {
				mainFiles = append(mainFiles, f)
			}
		}
	}
	return append(mainFiles, testFiles...), nil
}

func scanRoot(dir string) ([]string, error) {
	var names []string
	for _, ext := range extensions {
		matches, err := filepath.Glob(filepath.Join(dir, "application"+ext))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			names = append(names, filepath.Base(m))
		}
		matches, err = filepath.Glob(filepath.Join(dir, "application-*"+ext))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			names = append(names, filepath.Base(m))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ProfileSuffix returns the profile suffix of a discovered file name
// ("application-prod.yml" -> "prod"), or "" for the base "application.*"
// file.
func ProfileSuffix(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	const prefix = "application-"
	if len(stem) > len(prefix) && stem[:len(prefix)] == prefix {
		return stem[len(prefix):]
	}
	return ""
}

// IsBase reports whether path is the base "application.*" file (as
// opposed to a profile-specific "application-<profile>.*" file). Only
// base documents of main resources may define spring.profiles.group.*
// (spec.md §4.4).
func IsBase(path string) bool {
	return ProfileSuffix(path) == ""
}
