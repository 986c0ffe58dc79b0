/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Credentials are exchanged for a bearer token and never kept afterwards.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FoodDTO is the food resource as written by Create and returned by All.
type FoodDTO struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
	URL         string `json:"Url"`
}

// FoodID is a server assigned food identifier. The API may encode it as a
// JSON string or number; it is always handled as a string.
type FoodID string

func (f *FoodID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*f = FoodID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("food id is neither a string nor a number: %w", err)
	}

	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("food id %s is not an integer: %w", n, err)
	}

	*f = FoodID(n.String())

	return nil
}

// APIResponseDTO is the generic message envelope returned by mutating calls.
// Field matching is case-insensitive so both Msg and msg decode.
type APIResponseDTO struct {
	Msg    string `json:"msg"`
	FoodID FoodID `json:"foodId"`
}

// PatchOperation is a single JSON patch instruction.
type PatchOperation struct {
	Path  string `json:"path"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}
