// Copyright 2026 The Genesis Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package validation

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genesis.dev/genesis/errors"
)

func TestRequiredStringMinLength(t *testing.T) {
	schema := Schema{"title": RequiredString(MinLength(1), MaxLength(100))}

	result := Validate(map[string]any{"title": ""}, schema)

	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "title", result.Errors[0].Field)
	assert.Equal(t, "minimum length 1", result.Errors[0].Message)
}

func TestValidInput(t *testing.T) {
	schema := Schema{
		"title": RequiredString(MinLength(1)),
		"done":  RequiredBoolean(),
	}

	result := Validate(map[string]any{"title": "buy milk", "done": false}, schema)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err())
}

func TestAggregatesAllViolations(t *testing.T) {
	schema := Schema{
		"title": RequiredString(MinLength(1)),
		"count": RequiredNumber(Min(0)),
		"email": RequiredEmail(),
	}

	result := Validate(map[string]any{"count": json.Number("-3")}, schema)

	require.False(t, result.Valid)
	assert.Len(t, result.Errors, 3) // missing title, negative count, missing email
}

func TestMissingRequiredField(t *testing.T) {
	result := Validate(map[string]any{}, Schema{"name": RequiredString()})
	require.False(t, result.Valid)
	assert.Equal(t, "is required", result.Errors[0].Message)
}

func TestOptionalStringSkipsAbsent(t *testing.T) {
	schema := Schema{"nickname": OptionalString(MinLength(3))}

	assert.True(t, Validate(map[string]any{}, schema).Valid)
	assert.False(t, Validate(map[string]any{"nickname": "ab"}, schema).Valid)
}

func TestTypeMismatch(t *testing.T) {
	result := Validate(map[string]any{"title": 42}, Schema{"title": RequiredString()})
	require.False(t, result.Valid)
	assert.Equal(t, "must be a string", result.Errors[0].Message)
}

func TestNumberConstraints(t *testing.T) {
	schema := Schema{"age": RequiredNumber(Min(0), Max(130), Integer())}

	assert.True(t, Validate(map[string]any{"age": json.Number("42")}, schema).Valid)

	result := Validate(map[string]any{"age": json.Number("3.5")}, schema)
	require.False(t, result.Valid)
	assert.Equal(t, "must be an integer", result.Errors[0].Message)

	result = Validate(map[string]any{"age": json.Number("200")}, schema)
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0].Message, "maximum value")
}

func TestEmailRule(t *testing.T) {
	schema := Schema{"email": RequiredEmail()}

	assert.True(t, Validate(map[string]any{"email": "a@example.com"}, schema).Valid)
	assert.False(t, Validate(map[string]any{"email": "not-an-email"}, schema).Valid)
}

func TestURLRule(t *testing.T) {
	schema := Schema{"homepage": RequiredURL()}

	assert.True(t, Validate(map[string]any{"homepage": "https://example.com/x"}, schema).Valid)
	assert.False(t, Validate(map[string]any{"homepage": "ftp://example.com"}, schema).Valid)
	assert.False(t, Validate(map[string]any{"homepage": "nope"}, schema).Valid)
}

func TestEnumRule(t *testing.T) {
	schema := Schema{"status": RequiredEnum("open", "closed")}

	assert.True(t, Validate(map[string]any{"status": "open"}, schema).Valid)

	result := Validate(map[string]any{"status": "pending"}, schema)
	require.False(t, result.Valid)
	assert.Equal(t, "must be one of: open, closed", result.Errors[0].Message)
}

func TestArrayRule(t *testing.T) {
	schema := Schema{"tags": RequiredArray(MinItems(1), MaxItems(3), Items(RequiredString(MinLength(2))))}

	assert.True(t, Validate(map[string]any{"tags": []any{"go", "web"}}, schema).Valid)

	result := Validate(map[string]any{"tags": []any{"x"}}, schema)
	require.False(t, result.Valid)
	assert.Equal(t, "tags[0]", result.Errors[0].Field)

	result = Validate(map[string]any{"tags": "not-an-array"}, schema)
	require.False(t, result.Valid)
	assert.Equal(t, "must be an array", result.Errors[0].Message)
}

func TestPatternRule(t *testing.T) {
	schema := Schema{"slug": RequiredString(Pattern(regexp.MustCompile(`^[a-z-]+$`)))}

	assert.True(t, Validate(map[string]any{"slug": "my-post"}, schema).Valid)
	assert.False(t, Validate(map[string]any{"slug": "My Post"}, schema).Valid)
}

func TestFormBodies(t *testing.T) {
	schema := Schema{"title": RequiredString(MinLength(1))}
	result := Validate(map[string]string{"title": "ok"}, schema)
	assert.True(t, result.Valid)
}

func TestResultErr(t *testing.T) {
	schema := Schema{"title": RequiredString(MinLength(1))}
	result := Validate(map[string]any{"title": ""}, schema)

	err := result.Err()
	require.Error(t, err)

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "title", e.Field)
	assert.Equal(t, "title: minimum length 1", e.Message)
	assert.Equal(t, 400, e.HTTPStatus())
}
