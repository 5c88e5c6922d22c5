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

// Package validation checks parsed request bodies against declarative
// schemas. A schema maps field names to rules; Validate collects every
// violation rather than stopping at the first, so clients can fix a whole
// form in one round trip.
//
// Example:
//
//	schema := validation.Schema{
//	    "title": validation.RequiredString(validation.MinLength(1), validation.MaxLength(100)),
//	    "email": validation.RequiredEmail(),
//	    "tags":  validation.RequiredArray(validation.MaxItems(5)),
//	}
//	result := validation.Validate(body, schema)
//	if !result.Valid {
//	    c.Fail(result.Err())
//	    return
//	}
package validation
