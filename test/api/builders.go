/*
Copyright 2024-2025 the Unikorn Authors.
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

const (
	DefaultFoodName        = "TestFood"
	DefaultFoodDescription = "TestDescription"
)

// FoodPayloadBuilder builds food payloads for testing.
type FoodPayloadBuilder struct {
	payload FoodDTO
}

// NewFoodPayload creates a new food payload builder with the default test food.
func NewFoodPayload() *FoodPayloadBuilder {
	return &FoodPayloadBuilder{
		payload: FoodDTO{
			Name:        DefaultFoodName,
			Description: DefaultFoodDescription,
			URL:         "",
		},
	}
}

// NewEmptyFoodPayload creates a builder whose required fields are all empty.
func NewEmptyFoodPayload() *FoodPayloadBuilder {
	return &FoodPayloadBuilder{}
}

// WithName sets the food name.
func (b *FoodPayloadBuilder) WithName(name string) *FoodPayloadBuilder {
	b.payload.Name = name
	return b
}

// WithUniqueName sets a random food name with the given prefix.
func (b *FoodPayloadBuilder) WithUniqueName(prefix string) *FoodPayloadBuilder {
	b.payload.Name = generateRandomName(prefix)
	return b
}

// WithDescription sets the food description.
func (b *FoodPayloadBuilder) WithDescription(desc string) *FoodPayloadBuilder {
	b.payload.Description = desc
	return b
}

// WithURL sets the food picture URL.
func (b *FoodPayloadBuilder) WithURL(url string) *FoodPayloadBuilder {
	b.payload.URL = url
	return b
}

// Build returns the completed food payload.
func (b *FoodPayloadBuilder) Build() FoodDTO {
	return b.payload
}

// PatchBuilder builds JSON patch documents for the edit endpoint.
type PatchBuilder struct {
	operations []PatchOperation
}

// NewPatch creates an empty patch document.
func NewPatch() *PatchBuilder {
	return &PatchBuilder{}
}

// Replace adds a replace operation.
func (b *PatchBuilder) Replace(path string, value any) *PatchBuilder {
	b.operations = append(b.operations, PatchOperation{
		Path:  path,
		Op:    "replace",
		Value: value,
	})

	return b
}

// Build returns the patch operations.
func (b *PatchBuilder) Build() []PatchOperation {
	return b.operations
}
