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

package cli

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

const selfConfigFileName = ".spring-profile-resolver.toml"

// SelfConfig holds the defaults a .spring-profile-resolver.toml file may
// supply; a CLI flag given a non-empty value wins over these (spec.md §2.1
// [EXPANSION]). --include-test can only turn test resources on: it does
// not switch off include_test = true from the file.
type SelfConfig struct {
	Resources   []string `toml:"resources"`
	IncludeTest bool     `toml:"include_test"`
	Output      string   `toml:"output"`
	EnvFiles    []string `toml:"env_files"`
}

// findSelfConfig walks up from start looking for selfConfigFileName, the
// way many Go CLIs locate a dotfile — adapted from gs_app.initLog's
// candidate-file-existence-probing idiom, generalized from a fixed list of
// names to walking ancestor directories.
func findSelfConfig(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, selfConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// loadSelfConfig reads path (an explicit --config target or an
// auto-discovered dotfile) into a SelfConfig.
func loadSelfConfig(path string) (*SelfConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg SelfConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
