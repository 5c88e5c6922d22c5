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
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"genesis.dev/genesis/errors"
)

// Schema maps field names to validation rules.
type Schema map[string]Rule

// Violation describes one failed constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Result aggregates all violations for one Validate call.
type Result struct {
	Valid  bool        `json:"valid"`
	Errors []Violation `json:"errors,omitempty"`
}

// Err converts an invalid Result into a validation error carrying the first
// violation's field and value, with the full set joined in the message.
// Returns nil when the result is valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	first := r.Errors[0]
	msgs := make([]string, len(r.Errors))
	for i, v := range r.Errors {
		msgs[i] = v.Field + ": " + v.Message
	}
	return errors.NewValidation(first.Field, first.Value, strings.Join(msgs, "; "))
}

// Rule checks one field. present reports whether the field existed in the
// input at all, which lets optional rules skip absent fields.
type Rule interface {
	check(field string, value any, present bool) []Violation
}

// Validate checks value, which must be a map-shaped body, against schema.
// Every rule runs; violations accumulate.
func Validate(value any, schema Schema) Result {
	obj, ok := value.(map[string]any)
	if !ok {
		// Form bodies arrive as string maps.
		if form, isForm := value.(map[string]string); isForm {
			obj = make(map[string]any, len(form))
			for k, v := range form {
				obj[k] = v
			}
		} else {
			return Result{Errors: []Violation{{Field: "body", Message: "must be an object"}}}
		}
	}

	var violations []Violation
	for field, rule := range schema {
		v, present := obj[field]
		violations = append(violations, rule.check(field, v, present)...)
	}
	return Result{Valid: len(violations) == 0, Errors: violations}
}

// StringOption constrains string rules.
type StringOption func(*stringRule)

// MinLength requires at least n characters.
func MinLength(n int) StringOption { return func(r *stringRule) { r.minLength = &n } }

// MaxLength allows at most n characters.
func MaxLength(n int) StringOption { return func(r *stringRule) { r.maxLength = &n } }

// Pattern requires the value to match re in full.
func Pattern(re *regexp.Regexp) StringOption { return func(r *stringRule) { r.pattern = re } }

type stringRule struct {
	required  bool
	minLength *int
	maxLength *int
	pattern   *regexp.Regexp
}

// RequiredString requires a string field satisfying the given constraints.
func RequiredString(opts ...StringOption) Rule {
	r := &stringRule{required: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OptionalString validates the field only when present.
func OptionalString(opts ...StringOption) Rule {
	r := &stringRule{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *stringRule) check(field string, value any, present bool) []Violation {
	if !present {
		if r.required {
			return []Violation{{Field: field, Message: "is required"}}
		}
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return []Violation{{Field: field, Message: "must be a string", Value: value}}
	}
	var out []Violation
	if r.minLength != nil && len(s) < *r.minLength {
		out = append(out, Violation{Field: field, Message: fmt.Sprintf("minimum length %d", *r.minLength), Value: s})
	}
	if r.maxLength != nil && len(s) > *r.maxLength {
		out = append(out, Violation{Field: field, Message: fmt.Sprintf("maximum length %d", *r.maxLength), Value: s})
	}
	if r.pattern != nil && !r.pattern.MatchString(s) {
		out = append(out, Violation{Field: field, Message: "does not match required pattern", Value: s})
	}
	return out
}

// NumberOption constrains number rules.
type NumberOption func(*numberRule)

// Min requires the value to be at least n.
func Min(n float64) NumberOption { return func(r *numberRule) { r.min = &n } }

// Max requires the value to be at most n.
func Max(n float64) NumberOption { return func(r *numberRule) { r.max = &n } }

// Integer rejects fractional values.
func Integer() NumberOption { return func(r *numberRule) { r.integer = true } }

type numberRule struct {
	min     *float64
	max     *float64
	integer bool
}

// RequiredNumber requires a numeric field satisfying the given constraints.
func RequiredNumber(opts ...NumberOption) Rule {
	r := &numberRule{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *numberRule) check(field string, value any, present bool) []Violation {
	if !present {
		return []Violation{{Field: field, Message: "is required"}}
	}
	n, ok := toFloat(value)
	if !ok {
		return []Violation{{Field: field, Message: "must be a number", Value: value}}
	}
	var out []Violation
	if r.integer && n != math.Trunc(n) {
		out = append(out, Violation{Field: field, Message: "must be an integer", Value: value})
	}
	if r.min != nil && n < *r.min {
		out = append(out, Violation{Field: field, Message: fmt.Sprintf("minimum value %v", *r.min), Value: value})
	}
	if r.max != nil && n > *r.max {
		out = append(out, Violation{Field: field, Message: fmt.Sprintf("maximum value %v", *r.max), Value: value})
	}
	return out
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

type booleanRule struct{}

// RequiredBoolean requires a boolean field.
func RequiredBoolean() Rule { return booleanRule{} }

func (booleanRule) check(field string, value any, present bool) []Violation {
	if !present {
		return []Violation{{Field: field, Message: "is required"}}
	}
	if _, ok := value.(bool); !ok {
		return []Violation{{Field: field, Message: "must be a boolean", Value: value}}
	}
	return nil
}

type emailRule struct{}

// RequiredEmail requires a syntactically valid email address.
func RequiredEmail() Rule { return emailRule{} }

func (emailRule) check(field string, value any, present bool) []Violation {
	if !present {
		return []Violation{{Field: field, Message: "is required"}}
	}
	s, ok := value.(string)
	if !ok {
		return []Violation{{Field: field, Message: "must be a string", Value: value}}
	}
	if _, err := mail.ParseAddress(s); err != nil || strings.ContainsAny(s, "<> ") {
		return []Violation{{Field: field, Message: "must be a valid email address", Value: s}}
	}
	return nil
}

type urlRule struct{}

// RequiredURL requires an absolute http(s) URL.
func RequiredURL() Rule { return urlRule{} }

func (urlRule) check(field string, value any, present bool) []Violation {
	if !present {
		return []Violation{{Field: field, Message: "is required"}}
	}
	s, ok := value.(string)
	if !ok {
		return []Violation{{Field: field, Message: "must be a string", Value: value}}
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return []Violation{{Field: field, Message: "must be a valid URL", Value: s}}
	}
	return nil
}

type enumRule struct {
	values []string
}

// RequiredEnum requires the value to be one of the listed strings.
func RequiredEnum(values ...string) Rule { return enumRule{values: values} }

func (r enumRule) check(field string, value any, present bool) []Violation {
	if !present {
		return []Violation{{Field: field, Message: "is required"}}
	}
	s, ok := value.(string)
	if !ok {
		return []Violation{{Field: field, Message: "must be a string", Value: value}}
	}
	for _, allowed := range r.values {
		if s == allowed {
			return nil
		}
	}
	return []Violation{{
		Field:   field,
		Message: "must be one of: " + strings.Join(r.values, ", "),
		Value:   s,
	}}
}

// ArrayOption constrains array rules.
type ArrayOption func(*arrayRule)

// MinItems requires at least n elements.
func MinItems(n int) ArrayOption { return func(r *arrayRule) { r.minItems = &n } }

// MaxItems allows at most n elements.
func MaxItems(n int) ArrayOption { return func(r *arrayRule) { r.maxItems = &n } }

// Items applies rule to every element; violations are reported per index as
// "field[i]".
func Items(rule Rule) ArrayOption { return func(r *arrayRule) { r.itemRule = rule } }

type arrayRule struct {
	minItems *int
	maxItems *int
	itemRule Rule
}

// RequiredArray requires an array field satisfying the given constraints.
func RequiredArray(opts ...ArrayOption) Rule {
	r := &arrayRule{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *arrayRule) check(field string, value any, present bool) []Violation {
	if !present {
		return []Violation{{Field: field, Message: "is required"}}
	}
	arr, ok := value.([]any)
	if !ok {
		return []Violation{{Field: field, Message: "must be an array", Value: value}}
	}
	var out []Violation
	if r.minItems != nil && len(arr) < *r.minItems {
		out = append(out, Violation{Field: field, Message: fmt.Sprintf("minimum items %d", *r.minItems)})
	}
	if r.maxItems != nil && len(arr) > *r.maxItems {
		out = append(out, Violation{Field: field, Message: fmt.Sprintf("maximum items %d", *r.maxItems)})
	}
	if r.itemRule != nil {
		for i, item := range arr {
			out = append(out, r.itemRule.check(fmt.Sprintf("%s[%d]", field, i), item, true)...)
		}
	}
	return out
}
