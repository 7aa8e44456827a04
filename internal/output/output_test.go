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

package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

func identityRelPath(src model.ConfigSource) string {
	return src.Path
}

func TestRenderLeafwiseComments(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "orders.currency", model.NewScalar("USD"))
	model.SetPath(tree, "orders.max-line-items", model.NewScalar(int64(50)))

	result := &model.ResolverResult{
		Config: tree,
		Sources: map[string]model.ConfigSource{
			"orders.currency":       {Path: "application.yml"},
			"orders.max-line-items": {Path: "application-production.yml"},
		},
		Overridden: map[string]bool{},
	}

	out, err := Render(result, identityRelPath)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "currency: USD")
	assert.Contains(t, text, "# application.yml")
	assert.Contains(t, text, "max-line-items: 50")
	assert.Contains(t, text, "# application-production.yml")
	assert.NotContains(t, text, "From:", "leaf-wise comments carry no From: prefix, only the block form does")
}

func TestRenderBlockCommentWhenWholeSubtreeSharesOneSource(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "management.metrics.enabled", model.NewScalar(true))
	model.SetPath(tree, "management.metrics.export", model.NewScalar("prometheus"))

	result := &model.ResolverResult{
		Config: tree,
		Sources: map[string]model.ConfigSource{
			"management.metrics.enabled": {Path: "application-production-metrics.yml"},
			"management.metrics.export":  {Path: "application-production-metrics.yml"},
		},
		Overridden: map[string]bool{},
	}

	out, err := Render(result, identityRelPath)
	require.NoError(t, err)

	text := string(out)
	lines := strings.Split(text, "\n")
	var blockCommentLine, metricsLine int = -1, -1
	for i, l := range lines {
		if strings.Contains(l, "# From: application-production-metrics.yml") {
			blockCommentLine = i
		}
		if strings.Contains(strings.TrimSpace(l), "metrics:") {
			metricsLine = i
		}
	}
	require.NotEqual(t, -1, blockCommentLine)
	require.NotEqual(t, -1, metricsLine)
	assert.Less(t, blockCommentLine, metricsLine, "the shared-source comment attaches above the mapping, not per-leaf")
	assert.Equal(t, 1, strings.Count(text, "# From:"), "only one comment is emitted for a uniformly-sourced subtree")
}

func TestRenderMarksOverriddenPaths(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "server.port", model.NewScalar(int64(9090)))

	result := &model.ResolverResult{
		Config:     tree,
		Sources:    map[string]model.ConfigSource{"server.port": {Path: "application-production.yml"}},
		Overridden: map[string]bool{"server.port": true},
	}

	out, err := Render(result, identityRelPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "(overridden)")
}
