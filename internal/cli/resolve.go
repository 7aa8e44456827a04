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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jander99/spring-profile-resolver/internal/analyzer"
	"github.com/jander99/spring-profile-resolver/internal/analyzer/ruletable"
	"github.com/jander99/spring-profile-resolver/internal/model"
	"github.com/jander99/spring-profile-resolver/internal/output"
	"github.com/jander99/spring-profile-resolver/internal/resolver"
	"github.com/jander99/spring-profile-resolver/internal/vcap"
)

// configureResolveCommand attaches spec.md §6's CLI surface directly to
// root: "spring-profile-resolver <project-path> --profiles ..." is the
// whole interface, so there's no separate subcommand to dispatch to.
func configureResolveCommand(root *cobra.Command) {
	root.Args = cobra.ExactArgs(1)

	root.Flags().StringSliceP("profiles", "p", nil, "CSV of requested profile names (required)")
	root.Flags().StringSliceP("resources", "r", nil, "CSV of extra resource roots")
	root.Flags().BoolP("include-test", "t", false, "also load src/test/resources (applied last)")
	root.Flags().StringP("output", "o", "", "output directory (default: .computed/)")
	root.Flags().Bool("stdout", false, "write to stdout instead of a file")
	root.Flags().StringSlice("env-file", nil, "path(s) to KEY=VAL files; later files win")
	root.Flags().StringToString("env", nil, "explicit KEY=VAL overrides")
	root.Flags().Bool("no-system-env", false, "ignore the process environment")

	root.Flags().String("config", "", "explicit self-configuration TOML path")
	root.Flags().String("log-level", "info", "log level: debug|info|warn|error")
	root.Flags().Bool("no-log-file", false, "skip auto-discovery of a log configuration file")
	root.Flags().Bool("analyze", false, "run the rule-table analyzer and print findings to stderr")

	root.RunE = runResolve
}

func runResolve(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	if _, err := os.Stat(projectPath); err != nil {
		return inputErrorf("project path %q: %s", projectPath, err)
	}

	self := resolveSelfConfig(cmd, projectPath)

	logLevel, _ := cmd.Flags().GetString("log-level")
	noLogFile, _ := cmd.Flags().GetBool("no-log-file")
	if err := initLog(projectPath, logLevel, noLogFile); err != nil {
		return inputErrorf("log configuration: %s", err)
	}

	profileList, _ := cmd.Flags().GetStringSlice("profiles")
	if len(profileList) == 0 {
		return inputErrorf("--profiles is required")
	}

	resources, _ := cmd.Flags().GetStringSlice("resources")
	if len(resources) == 0 {
		resources = self.Resources
	}
	includeTest, _ := cmd.Flags().GetBool("include-test")
	if !includeTest {
		includeTest = self.IncludeTest
	}
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if len(envFiles) == 0 {
		envFiles = self.EnvFiles
	}
	envOverrides, _ := cmd.Flags().GetStringToString("env")
	noSystemEnv, _ := cmd.Flags().GetBool("no-system-env")

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = self.Output
	}
	if outputDir == "" {
		outputDir = ".computed"
	}
	toStdout, _ := cmd.Flags().GetBool("stdout")

	shouldAnalyze, _ := cmd.Flags().GetBool("analyze")

	result, err := resolver.Resolve(resolver.Config{
		ProjectPath:    projectPath,
		Profiles:       profileList,
		ExtraResources: resources,
		IncludeTest:    includeTest,
		EnvFiles:       envFiles,
		EnvOverrides:   envOverrides,
		NoSystemEnv:    noSystemEnv,
		VCAPSource: vcap.Source{
			VCAPServices:    os.Getenv("VCAP_SERVICES"),
			VCAPApplication: os.Getenv("VCAP_APPLICATION"),
		},
	})
	if err != nil {
		return err
	}

	rendered, err := output.Render(result, func(src model.ConfigSource) string {
		return relPath(projectPath, src)
	})
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}

	if err := writeWarnings(cmd, result); err != nil {
		return err
	}

	if shouldAnalyze {
		if err := runAnalyzer(cmd, result); err != nil {
			return err
		}
	}

	if toStdout {
		_, err := cmd.OutOrStdout().Write(rendered)
		return err
	}

	return writeOutputFile(outputDir, profileList, rendered)
}

func resolveSelfConfig(cmd *cobra.Command, projectPath string) *SelfConfig {
	explicit, _ := cmd.Flags().GetString("config")

	path := explicit
	if path == "" {
		found, ok := findSelfConfig(projectPath)
		if !ok {
			return &SelfConfig{}
		}
		path = found
	}

	cfg, err := loadSelfConfig(path)
	if err != nil {
		return &SelfConfig{}
	}
	return cfg
}

func writeOutputFile(outputDir string, profileList []string, rendered []byte) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	name := "application-" + strings.Join(profileList, "-") + "-computed.yml"
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

// writeWarnings prints result.Warnings grouped by category (spec.md §7),
// categories in first-occurrence order and warnings within a category in
// their original (already deterministic) order.
func writeWarnings(cmd *cobra.Command, result *model.ResolverResult) error {
	var order []model.WarningCategory
	grouped := map[model.WarningCategory][]model.Warning{}
	for _, w := range result.Warnings {
		if _, ok := grouped[w.Category]; !ok {
			order = append(order, w.Category)
		}
		grouped[w.Category] = append(grouped[w.Category], w)
	}

	for _, cat := range order {
		fmt.Fprintf(cmd.ErrOrStderr(), "warnings [%s]:\n", cat)
		for _, w := range grouped[cat] {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", w.Message)
		}
	}
	return nil
}

func runAnalyzer(cmd *cobra.Command, result *model.ResolverResult) error {
	table, err := ruletable.Compile("default", defaultRules)
	if err != nil {
		return fmt.Errorf("compile analyzer rules: %w", err)
	}
	findings, err := analyzer.RunAll([]analyzer.Analyzer{table}, result)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	for _, f := range findings {
		fmt.Fprintf(cmd.ErrOrStderr(), "finding: %s: %s (%s)\n", f.Path, f.Message, f.Rule)
	}
	return nil
}

// relPath renders a source path relative to projectPath when possible,
// falling back to the absolute path.
func relPath(projectPath string, src model.ConfigSource) string {
	rel, err := filepath.Rel(projectPath, src.Path)
	if err != nil {
		return src.Path
	}
	return rel
}
