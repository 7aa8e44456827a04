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

import "github.com/jander99/spring-profile-resolver/internal/analyzer/ruletable"

// defaultRules is the analyzer's built-in rule table for --analyze. These
// are deliberately generic (no knowledge of any particular application's
// schema), matching spec.md §9's "rule sets are data tables keyed by
// property paths" framing — a real deployment would ship its own table.
var defaultRules = []ruletable.Rule{
	{
		Path:       "server.port",
		Expression: "$ > 0 && $ < 65536",
		Message:    "server.port should be a valid TCP port",
	},
	{
		Path:       "logging.level.root",
		Expression: `$ != ""`,
		Message:    "logging.level.root should not be blank",
	},
}
