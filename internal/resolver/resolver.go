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

// Package resolver orchestrates the full pipeline spec.md §4.8 describes:
// discover, parse, splice imports, collect groups, expand profiles, filter,
// merge, build the environment overlay, resolve placeholders. The shape —
// "run each stage over the accumulated layers, wrap stage errors with
// context, keep going on warnings" — is the same one gs_conf/conf.go's
// AppConfig.Refresh uses for its own (shorter) app/env/cmd layer pipeline.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-spring/log"
	"github.com/go-spring/stdlib/errutil"

	"github.com/jander99/spring-profile-resolver/internal/configimport"
	"github.com/jander99/spring-profile-resolver/internal/discovery"
	"github.com/jander99/spring-profile-resolver/internal/merge"
	"github.com/jander99/spring-profile-resolver/internal/model"
	"github.com/jander99/spring-profile-resolver/internal/parser"
	"github.com/jander99/spring-profile-resolver/internal/placeholder"
	"github.com/jander99/spring-profile-resolver/internal/profiles"
	"github.com/jander99/spring-profile-resolver/internal/vcap"
)

// Config is everything a single Resolve call needs; the CLI builds one from
// flags and process environment, but it's a plain struct so tests and other
// entry points don't have to go through cobra.
type Config struct {
	ProjectPath    string
	Profiles       []string
	ExtraResources []string
	IncludeTest    bool

	EnvFiles     []string
	EnvOverrides map[string]string
	NoSystemEnv  bool

	ProcessEnv func() []string // overridable for tests; defaults to os.Environ
	VCAPSource vcap.Source

	MaxPlaceholderIterations int
}

// ConfigError marks a fatal configuration problem — malformed input,
// a profile/import cycle, a required import that couldn't be resolved —
// mapped to exit code 2 by the CLI (spec.md §7).
type ConfigError struct {
	Stage string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Resolve runs the full pipeline and returns the merged result.
func Resolve(cfg Config) (*model.ResolverResult, error) {
	roots := buildRoots(cfg)
	classpathRoots := classpathRoots(roots)

	log.Infof(context.Background(), log.TagAppDef, "discovering configuration files under %d root(s)", len(roots))
	files, err := discovery.Discover(roots)
	if err != nil {
		return nil, &ConfigError{Stage: "discovery", Err: errutil.Stack(err, "discovery error")}
	}

	// Within each root, base application.* files are merged before the
	// profile-specific application-*.* files, so a profile document
	// overrides the base values it shadows.
	ordered := make([]discovery.File, 0, len(files))
	for i := 0; i < len(files); {
		j := i
		for j < len(files) && filepath.Dir(files[j].Path) == filepath.Dir(files[i].Path) && files[j].IsTest == files[i].IsTest {
			j++
		}
		for _, base := range []bool{true, false} {
			for _, f := range files[i:j] {
				if discovery.IsBase(f.Path) == base {
					ordered = append(ordered, f)
				}
			}
		}
		i = j
	}
	files = ordered

	var (
		docs     []*model.ConfigDocument
		warnings []model.Warning
	)
	for _, f := range files {
		parsed, w, err := parser.ParseFile(f.Path, f.IsTest)
		if err != nil {
			return nil, &ConfigError{Stage: "parse", Err: errutil.Stack(err, "parse error in %s", f.Path)}
		}
		warnings = append(warnings, w...)
		docs = append(docs, parsed...)
	}

	docs, w, err := configimport.Resolve(docs, classpathRoots, configimport.ParserAdapter())
	warnings = append(warnings, w...)
	if err != nil {
		return nil, &ConfigError{Stage: "imports", Err: errutil.Stack(err, "import error")}
	}

	groups := profiles.CollectGroups(docs, isBaseMainDoc)
	active, err := profiles.Expand(cfg.Profiles, groups)
	if err != nil {
		return nil, &ConfigError{Stage: "profiles", Err: errutil.Stack(err, "profile expansion error")}
	}
	activeSet := profiles.ActiveSet(active)

	applicable := profiles.Filter(docs, activeSet)

	acc := merge.New()
	for _, doc := range applicable {
		acc.Apply(doc.Content, doc.Source())
	}

	env, envWarnings := buildEnv(cfg)
	warnings = append(warnings, envWarnings...)

	placeholderWarnings := placeholder.Resolve(acc.Tree, env, cfg.MaxPlaceholderIterations)
	warnings = append(warnings, placeholderWarnings...)

	log.Infof(context.Background(), log.TagAppDef, "resolved %d active profile(s), %d warning(s)", len(active), len(warnings))

	return &model.ResolverResult{
		Config:         acc.Tree,
		Sources:        acc.Sources,
		Overridden:     acc.Overridden,
		Warnings:       warnings,
		ActiveProfiles: active,
	}, nil
}

func buildRoots(cfg Config) []discovery.Root {
	roots := []discovery.Root{{Dir: filepath.Join(cfg.ProjectPath, "src", "main", "resources")}}
	for _, r := range cfg.ExtraResources {
		roots = append(roots, discovery.Root{Dir: r})
	}
	if cfg.IncludeTest {
		roots = append(roots, discovery.Root{Dir: filepath.Join(cfg.ProjectPath, "src", "test", "resources"), IsTest: true})
	}
	return roots
}

func classpathRoots(roots []discovery.Root) []string {
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = r.Dir
	}
	return out
}

// isBaseMainDoc reports whether doc may contribute spring.profiles.group.*
// entries: only the first document of a main (non-test) resource's base
// "application.*" file qualifies (spec.md §4.4) — a src/test/resources
// override, or a non-first document of an otherwise-base-named file, does
// not.
func isBaseMainDoc(doc *model.ConfigDocument) bool {
	return !doc.IsTest && doc.DocumentIndex == 0 && discovery.IsBase(doc.SourceFile)
}

// buildEnv assembles the environment overlay in spec.md §4.6's stated
// precedence: optional env files, process environment (unless disabled),
// explicit --env overrides, with VCAP layered in ahead of all of them
// under its own vcap.* namespace.
func buildEnv(cfg Config) (*mapEnv, []model.Warning) {
	env := newMapEnv()

	vcapMap, vcapWarnings := vcap.Flatten(cfg.VCAPSource)
	for _, k := range vcapMap.Keys() {
		v, _ := vcapMap.Get(k)
		flattenInto(env, "vcap."+k, v)
	}

	for _, path := range cfg.EnvFiles {
		pairs, err := readEnvFile(path)
		if err != nil {
			vcapWarnings = append(vcapWarnings, model.Warning{
				Category: model.WarnParse,
				Message:  fmt.Sprintf("env file %s: %s", path, err),
			})
			continue
		}
		for k, v := range pairs {
			env.setRaw(k, v)
		}
	}

	if !cfg.NoSystemEnv {
		processEnv := cfg.ProcessEnv
		if processEnv == nil {
			processEnv = os.Environ
		}
		for _, kv := range processEnv() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				env.setRaw(kv[:i], kv[i+1:])
			}
		}
	}

	for k, v := range cfg.EnvOverrides {
		env.setRaw(k, v)
	}

	return env, vcapWarnings
}

func readEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.IndexByte(line, '=')
		if i < 0 {
			continue
		}
		out[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i+1:])
	}
	return out, nil
}

// flattenInto records every leaf beneath a vcap.* node as a raw env entry,
// keyed by its dot-path so placeholder.lookup's tree-then-env fallback
// finds vcap.application.* / vcap.services.<name>.* the same way it finds
// any other environment value.
func flattenInto(env *mapEnv, prefix string, n *model.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case model.KindMapping:
		for _, k := range n.Mapping.Keys() {
			v, _ := n.Mapping.Get(k)
			flattenInto(env, prefix+"."+k, v)
		}
	case model.KindSequence:
		for i, v := range n.Sequence {
			flattenInto(env, fmt.Sprintf("%s[%d]", prefix, i), v)
		}
	case model.KindScalar:
		env.setPath(prefix, fmt.Sprint(n.Scalar))
	}
}

// mapEnv implements placeholder.Env with spec.md §4.6's case-insensitive,
// dot/hyphen-to-underscore name translation, plus exact dot-path lookups
// for VCAP-derived entries that were never meant to look like env var
// names in the first place.
type mapEnv struct {
	exact      map[string]string
	translated map[string]string
}

func newMapEnv() *mapEnv {
	return &mapEnv{exact: map[string]string{}, translated: map[string]string{}}
}

// setRaw records a real environment variable (KEY=VAL shape): it's looked
// up only via the translated (case/punctuation-insensitive) table.
func (e *mapEnv) setRaw(key, value string) {
	e.translated[translateEnvKey(key)] = value
}

// setPath records a dot-path value (from VCAP flattening) under its exact
// path, bypassing translation since these names already look like
// placeholder dot-paths, not shell-style env vars.
func (e *mapEnv) setPath(path, value string) {
	e.exact[path] = value
}

func (e *mapEnv) Lookup(name string) (string, bool) {
	if v, ok := e.exact[name]; ok {
		return v, true
	}
	v, ok := e.translated[translateEnvKey(name)]
	return v, ok
}

func translateEnvKey(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
