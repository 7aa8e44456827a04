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
	"context"
	"os"
	"path/filepath"

	"github.com/go-spring/log"
)

// initLog auto-discovers a log-<level>.yaml / log.yaml next to
// projectPath and refreshes the logger from it, the same
// candidate-file-existence-probing algorithm gs_app.initLog uses for the
// framework's own logging, repurposed here to configure the resolver's
// logger instead of an application's. noLogFile skips discovery entirely
// and leaves the default logger in place.
func initLog(projectPath, level string, noLogFile bool) error {
	if noLogFile {
		return nil
	}

	var candidates []string
	if level != "" {
		candidates = append(candidates,
			filepath.Join(projectPath, "log-"+level+".yaml"),
			filepath.Join(projectPath, "log-"+level+".yml"),
		)
	}
	candidates = append(candidates,
		filepath.Join(projectPath, "log.yaml"),
		filepath.Join(projectPath, "log.yml"),
	)

	var found string
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			found = c
			break
		}
	}

	if found == "" {
		log.Infof(context.Background(), log.TagAppDef, "no log configuration file found, using default logger")
		return nil
	}
	return log.RefreshFile(found)
}
