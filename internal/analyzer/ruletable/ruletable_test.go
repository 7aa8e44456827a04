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

package ruletable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

func resultWithPort(port int64) *model.ResolverResult {
	tree := model.NewMapping()
	model.SetPath(tree, "server.port", model.NewScalar(port))
	return &model.ResolverResult{Config: tree}
}

func TestCompileRejectsInvalidExpression(t *testing.T) {
	_, err := Compile("bad", []Rule{{Path: "server.port", Expression: "$ >"}})
	require.Error(t, err)
}

func TestAnalyzeReportsFailingRule(t *testing.T) {
	table, err := Compile("ports", []Rule{
		{Path: "server.port", Expression: "$ > 0 && $ < 65536", Message: "server.port should be a valid TCP port"},
	})
	require.NoError(t, err)

	findings, err := table.Analyze(resultWithPort(70000))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "server.port", findings[0].Path)
}

func TestAnalyzePassingRuleProducesNoFinding(t *testing.T) {
	table, err := Compile("ports", []Rule{
		{Path: "server.port", Expression: "$ > 0 && $ < 65536", Message: "server.port should be a valid TCP port"},
	})
	require.NoError(t, err)

	findings, err := table.Analyze(resultWithPort(8080))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAnalyzeSkipsRulesForMissingPaths(t *testing.T) {
	table, err := Compile("missing", []Rule{
		{Path: "does.not.exist", Expression: "$ != nil"},
	})
	require.NoError(t, err)

	tree := model.NewMapping()
	findings, err := table.Analyze(&model.ResolverResult{Config: tree})
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAnalyzeCanReferenceOtherPathsViaEnv(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "server.port", model.NewScalar(int64(8080)))
	model.SetPath(tree, "management.port", model.NewScalar(int64(8080)))

	table, err := Compile("distinct-ports", []Rule{
		{Path: "management.port", Expression: `$ != env["server.port"]`, Message: "management.port must differ from server.port"},
	})
	require.NoError(t, err)

	findings, err := table.Analyze(&model.ResolverResult{Config: tree})
	require.NoError(t, err)
	require.Len(t, findings, 1)
}
