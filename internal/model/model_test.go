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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", NewScalar("2"))
	m.Set("a", NewScalar("1"))
	m.Set("c", NewScalar("3"))

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())

	m.Set("a", NewScalar("one"))
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys(), "replacing a key must not move it")

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "one", v.Scalar)
}

func TestOrderedMapDelete(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", NewScalar(1))
	m.Set("b", NewScalar(2))
	m.Set("c", NewScalar(3))

	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	m.Delete("missing")
	assert.Equal(t, 2, m.Len(), "deleting an absent key is a no-op")
}

func TestIsEmptyMapping(t *testing.T) {
	assert.True(t, NewMapping().IsEmptyMapping())
	assert.False(t, NewScalar("x").IsEmptyMapping())

	m := NewMapping()
	m.Mapping.Set("k", NewScalar("v"))
	assert.False(t, m.IsEmptyMapping())

	var nilNode *Node
	assert.False(t, nilNode.IsEmptyMapping())
}

func TestNodeCloneIsDeep(t *testing.T) {
	root := NewMapping()
	root.Mapping.Set("server", func() *Node {
		n := NewMapping()
		n.Mapping.Set("port", NewScalar(int64(8080)))
		return n
	}())
	root.Mapping.Set("tags", NewSequence([]*Node{NewScalar("a"), NewScalar("b")}))

	clone := root.Clone()

	server, _ := clone.Mapping.Get("server")
	server.Mapping.Set("port", NewScalar(int64(9090)))

	original, _ := root.Mapping.Get("server")
	originalPort, _ := original.Mapping.Get("port")
	assert.Equal(t, int64(8080), originalPort.Scalar, "mutating the clone must not affect the original")

	clone.Sequence[0].Scalar = "mutated"
	assert.Equal(t, "a", root.Sequence[0].Scalar, "mutating the clone's sequence must not affect the original")
}

func TestConfigSourceEqual(t *testing.T) {
	a := ConfigSource{Path: "application.yml", DocumentIndex: 0}
	b := ConfigSource{Path: "application.yml", DocumentIndex: 0, Line: 12}
	c := ConfigSource{Path: "application.yml", DocumentIndex: 1}

	assert.True(t, a.Equal(b), "Line is not part of source identity")
	assert.False(t, a.Equal(c))
}
