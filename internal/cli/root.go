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

// Package cli defines the Cobra command tree for spring-profile-resolver:
// flag parsing, environment ingestion, self-configuration discovery, and
// exit-code mapping, following kstenerud-yoloai/internal/cli/root.go's
// shape (a thin Execute wrapper dispatching on sentinel error types).
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jander99/spring-profile-resolver/internal/resolver"
)

// Execute runs the root command and returns the process exit code, per
// spec.md §7: 0 success, 1 input/usage error, 2 configuration error.
func Execute(ctx context.Context) int {
	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintf(os.Stderr, "spring-profile-resolver: %s\n", err)
	return exitCodeForError(err)
}

// exitCodeForError maps a returned command error to spec.md §7's exit
// codes, split out of Execute so tests can exercise the mapping without
// going through os.Stderr.
func exitCodeForError(err error) int {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return 1
	}

	var configErr *resolver.ConfigError
	if errors.As(err, &configErr) {
		return 2
	}

	return 1
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spring-profile-resolver",
		Short: "Compute the effective merged configuration for a set of active profiles",
		Long: `spring-profile-resolver resolves a Spring-Boot-style application
resource tree (application*.yml / application*.properties, profile groups,
spring.config.import directives, placeholder substitution) down to one
merged, source-attributed configuration document.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	configureResolveCommand(root)
	return root
}
