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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func generateRandomName(prefix string) string {
	bytes := make([]byte, 4) // 8 hex characters
	_, _ = rand.Read(bytes)

	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(bytes))
}

// CreateFoodWithCleanup creates a food outside of the ordered suite and
// schedules its deletion when the current spec finishes.
func CreateFoodWithCleanup(ctx context.Context, client *APIClient, payload FoodDTO) string {
	resp, err := client.CreateFood(ctx, payload)
	Expect(err).NotTo(HaveOccurred())
	Expect(resp.StatusCode).To(Equal(http.StatusCreated), "unexpected create response: %s (trace ID: %s)", resp, resp.TraceID)

	var created APIResponseDTO
	Expect(resp.JSON(&created)).To(Succeed())
	Expect(created.FoodID).NotTo(BeEmpty(), "Expected FoodId to be present in the response.")

	foodID := string(created.FoodID)

	GinkgoWriter.Printf("Created food with ID: %s\n", foodID)

	// Runs whether the spec passes or fails.
	DeferCleanup(func(ctx SpecContext) {
		GinkgoWriter.Printf("Cleaning up food: %s\n", foodID)

		resp, deleteErr := client.DeleteFood(ctx, foodID)

		switch {
		case deleteErr != nil:
			GinkgoWriter.Printf("Warning: Failed to delete food %s: %v\n", foodID, deleteErr)
		case resp.StatusCode != http.StatusOK:
			GinkgoWriter.Printf("Food %s was not deleted (status %d), it may already be gone\n", foodID, resp.StatusCode)
		default:
			GinkgoWriter.Printf("Successfully deleted food: %s\n", foodID)
		}
	})

	return foodID
}

// VerifyFoodPresence checks that a food with the given name is listed.
func VerifyFoodPresence(foods []FoodDTO, name string) {
	names := make([]string, 0, len(foods))
	for _, food := range foods {
		names = append(names, food.Name)
	}

	Expect(names).To(ContainElement(name), "Expected food %s to be present in the list", name)
}
