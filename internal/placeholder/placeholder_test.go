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

package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

type fakeEnv map[string]string

func (e fakeEnv) Lookup(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}

func TestResolveFromTreeReference(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "server.host", model.NewScalar("0.0.0.0"))
	model.SetPath(tree, "server.url", model.NewScalar("http://${server.host}:8080"))

	warnings := Resolve(tree, nil, 0)
	assert.Empty(t, warnings)

	n, _ := model.GetPath(tree, "server.url")
	assert.Equal(t, "http://0.0.0.0:8080", n.Scalar)
}

func TestResolveFallsBackToEnv(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "server.port", model.NewScalar("${PORT:8080}"))

	warnings := Resolve(tree, fakeEnv{"PORT": "9090"}, 0)
	assert.Empty(t, warnings)

	n, _ := model.GetPath(tree, "server.port")
	assert.Equal(t, int64(9090), n.Scalar, "a fully-resolved whole-string placeholder is re-typed")
}

func TestResolveUsesDefaultWhenNameMissing(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "server.port", model.NewScalar("${PORT:8080}"))

	warnings := Resolve(tree, fakeEnv{}, 0)
	assert.Empty(t, warnings)

	n, _ := model.GetPath(tree, "server.port")
	assert.Equal(t, int64(8080), n.Scalar)
}

func TestResolveChainedDefaults(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "region", model.NewScalar("${REGION:${FALLBACK_REGION:us-east-1}}"))

	warnings := Resolve(tree, fakeEnv{}, 0)
	assert.Empty(t, warnings)

	n, _ := model.GetPath(tree, "region")
	assert.Equal(t, "us-east-1", n.Scalar)
}

func TestResolveMultiPassAcrossSiblings(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "a", model.NewScalar("${b}-suffix"))
	model.SetPath(tree, "b", model.NewScalar("${c}"))
	model.SetPath(tree, "c", model.NewScalar("value"))

	warnings := Resolve(tree, nil, 0)
	assert.Empty(t, warnings)

	n, _ := model.GetPath(tree, "a")
	assert.Equal(t, "value-suffix", n.Scalar)
}

func TestResolveNonStringScalarUnaffected(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "server.port", model.NewScalar(int64(8080)))

	warnings := Resolve(tree, nil, 0)
	assert.Empty(t, warnings)

	n, _ := model.GetPath(tree, "server.port")
	assert.Equal(t, int64(8080), n.Scalar)
}

func TestResolveEmbeddedPlaceholderStaysString(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "greeting", model.NewScalar("hello ${name}"))
	model.SetPath(tree, "name", model.NewScalar("world"))

	warnings := Resolve(tree, nil, 0)
	assert.Empty(t, warnings)

	n, _ := model.GetPath(tree, "greeting")
	assert.Equal(t, "hello world", n.Scalar)
}

func TestResolveUnresolvedPlaceholderIsReportedAndLeftLiteral(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "secret", model.NewScalar("${DOES_NOT_EXIST}"))

	warnings := Resolve(tree, fakeEnv{}, 2)
	require.Len(t, warnings, 1)
	assert.Equal(t, model.WarnPlaceholder, warnings[0].Category)

	n, _ := model.GetPath(tree, "secret")
	assert.Equal(t, "${DOES_NOT_EXIST}", n.Scalar)
}

func TestResolveSelfReferenceCycleIsReported(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "a", model.NewScalar("${a}"))

	warnings := Resolve(tree, nil, 3)
	require.Len(t, warnings, 1)
	assert.Equal(t, model.WarnPlaceholder, warnings[0].Category)
}

func TestResolveUnresolvedPlaceholderWarningsAreSortedByPath(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "zeta", model.NewScalar("${ZETA_VALUE}"))
	model.SetPath(tree, "alpha", model.NewScalar("${ALPHA_VALUE}"))
	model.SetPath(tree, "mid", model.NewScalar("${MID_VALUE}"))

	for i := 0; i < 5; i++ {
		warnings := Resolve(tree.Clone(), fakeEnv{}, 2)
		require.Len(t, warnings, 3)
		assert.Contains(t, warnings[0].Message, "alpha")
		assert.Contains(t, warnings[1].Message, "mid")
		assert.Contains(t, warnings[2].Message, "zeta")
	}
}

func TestResolveMutualReferenceCycleIsReported(t *testing.T) {
	tree := model.NewMapping()
	model.SetPath(tree, "a", model.NewScalar("${b}"))
	model.SetPath(tree, "b", model.NewScalar("${a}"))

	warnings := Resolve(tree, nil, 5)
	assert.NotEmpty(t, warnings)
}
