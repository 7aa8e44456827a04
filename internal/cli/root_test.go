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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jander99/spring-profile-resolver/internal/resolver"
)

func TestExitCodeForErrorInputError(t *testing.T) {
	assert.Equal(t, 1, exitCodeForError(inputErrorf("bad input")))
}

func TestExitCodeForErrorConfigError(t *testing.T) {
	err := &resolver.ConfigError{Stage: "parse", Err: errors.New("boom")}
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestExitCodeForErrorUnknownDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, exitCodeForError(errors.New("mystery failure")))
}
