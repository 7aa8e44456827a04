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

package profileexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalBasic(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		active map[string]bool
		want   bool
	}{
		{"bare ident true", "production", map[string]bool{"production": true}, true},
		{"bare ident false", "production", map[string]bool{"development": true}, false},
		{"negation", "!production", map[string]bool{"development": true}, true},
		{"and both true", "production & eu", map[string]bool{"production": true, "eu": true}, true},
		{"and one false", "production & eu", map[string]bool{"production": true}, false},
		{"or either true", "production | staging", map[string]bool{"staging": true}, true},
		{"or neither true", "production | staging", map[string]bool{"development": true}, false},
		{"parens override precedence", "!(production | staging)", map[string]bool{"development": true}, true},
		{"parens override precedence, active", "!(production | staging)", map[string]bool{"staging": true}, false},
		{"nested not", "!!production", map[string]bool{"production": true}, true},
		{"and binds tighter than or", "a | b & c", map[string]bool{"a": true}, true},
		{"and binds tighter than or, and-branch", "a | b & c", map[string]bool{"b": true, "c": true}, true},
		{"and binds tighter than or, partial and fails", "a | b & c", map[string]bool{"b": true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Eval(tt.active))
		})
	}
}

func TestParseWhitespaceInsignificant(t *testing.T) {
	e, err := Parse("  production   &   !staging  ")
	require.NoError(t, err)
	assert.True(t, e.Eval(map[string]bool{"production": true}))
	assert.False(t, e.Eval(map[string]bool{"production": true, "staging": true}))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"unmatched open paren", "(production"},
		{"unmatched close paren", "production)"},
		{"dangling operator", "production &"},
		{"trailing garbage", "production production"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParseLegacyListIsOr(t *testing.T) {
	e, err := ParseLegacyList([]string{"production", " staging ", ""})
	require.NoError(t, err)

	assert.Equal(t, "production|staging", e.String())
	assert.True(t, e.Eval(map[string]bool{"staging": true}))
	assert.False(t, e.Eval(map[string]bool{"development": true}))
}

func TestParseLegacyListAllBlankIsError(t *testing.T) {
	_, err := ParseLegacyList([]string{"", "  "})
	require.Error(t, err)
}
