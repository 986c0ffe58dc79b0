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

//nolint:revive,staticcheck // dot imports are standard for Gomega matchers
package foody

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/foody/pkg/sequencer"
	"github.com/unikorn-cloud/foody/test/api"
)

// Response messages the Foody API returns.
const (
	MsgEdited       = "Successfully edited"
	MsgDeleted      = "Deleted successfully!"
	MsgNotFound     = "No food revues..."
	MsgUnableDelete = "Unable to delete this food revue!"
)

const (
	editedName      = "string"
	nonExistingName = "Non Existing Food"
	namePatchPath   = "/name"
)

// SuiteName names the ordered food lifecycle.
const SuiteName = "FoodyPrep"

const (
	CreateCaseName        = "CreateFood_WithRequiredFields_ShouldReturnCreated"
	EditCaseName          = "EditCreatedFoodTitle_ShouldReturnOk"
	ListCaseName          = "GetAllFoods_ShouldReturnListOfFoods"
	DeleteCaseName        = "DeleteEditedFood_ShouldReturnOk"
	InvalidCreateCaseName = "CreateFood_WithoutRequiredFields_ShouldReturnBadRequest"
	EditMissingCaseName   = "EditNonExistingFood_ShouldReturnNotFound"
	DeleteMissingCaseName = "DeleteNonExistingFood_ShouldReturnBadRequest"
)

// Cases returns the ordered food lifecycle. Later cases depend on the food
// created by the first one, the negative cases 5 to 7 depend on nothing.
func Cases() []sequencer.Case[*State] {
	return []sequencer.Case[*State]{
		{Order: 1, Name: CreateCaseName, Run: createFood},
		{Order: 2, Name: EditCaseName, Run: editCreatedFood},
		{Order: 3, Name: ListCaseName, Run: listFoods},
		{Order: 4, Name: DeleteCaseName, Run: deleteEditedFood},
		{Order: 5, Name: InvalidCreateCaseName, Run: createFoodWithoutRequiredFields},
		{Order: 6, Name: EditMissingCaseName, Run: editNonExistingFood},
		{Order: 7, Name: DeleteMissingCaseName, Run: deleteNonExistingFood},
	}
}

// transport marks client errors where no response arrived.
func transport(err error) error {
	if errors.Is(err, api.ErrTransport) {
		return fmt.Errorf("%w: %w", sequencer.ErrTransport, err)
	}

	return err
}

func createFood(ctx context.Context, g Gomega, s *State) error {
	// Arrange
	food := api.NewFoodPayload().Build()

	// Act
	resp, err := s.Client().CreateFood(ctx, food)
	if err != nil {
		return transport(err)
	}

	// Assert
	g.Expect(resp.StatusCode).To(Equal(http.StatusCreated), "Expected status code to be Created (201).")

	var body api.APIResponseDTO
	g.Expect(resp.JSON(&body)).To(Succeed())
	g.Expect(body.FoodID).NotTo(BeEmpty(), "Expected FoodId to be present in the response.")

	return s.SetFoodID(string(body.FoodID))
}

func editCreatedFood(ctx context.Context, g Gomega, s *State) error {
	foodID, err := s.FoodID()
	if err != nil {
		return err
	}

	patch := api.NewPatch().Replace(namePatchPath, editedName).Build()

	resp, err := s.Client().EditFood(ctx, foodID, patch)
	if err != nil {
		return transport(err)
	}

	g.Expect(resp.StatusCode).To(Equal(http.StatusOK), "Expected status code to be OK (200).")

	var body api.APIResponseDTO
	g.Expect(resp.JSON(&body)).To(Succeed())
	g.Expect(body.Msg).To(Equal(MsgEdited), "Expected response message to indicate successful edit.")

	return nil
}

func listFoods(ctx context.Context, g Gomega, s *State) error {
	resp, err := s.Client().ListFoods(ctx)
	if err != nil {
		return transport(err)
	}

	g.Expect(resp.StatusCode).To(Equal(http.StatusOK), "Expected status code to be OK (200).")

	var foods []api.FoodDTO
	g.Expect(resp.JSON(&foods)).To(Succeed())
	g.Expect(foods).NotTo(BeEmpty(), "Expected the list of foods to be not empty.")
	g.Expect(len(foods)).To(BeNumerically(">", 0), "Expected the list of foods to contain at least one item.")

	return nil
}

func deleteEditedFood(ctx context.Context, g Gomega, s *State) error {
	foodID, err := s.FoodID()
	if err != nil {
		return err
	}

	resp, err := s.Client().DeleteFood(ctx, foodID)
	if err != nil {
		return transport(err)
	}

	g.Expect(resp.StatusCode).To(Equal(http.StatusOK), "Expected status code to be OK (200).")

	// The server accepted the delete, the reference is gone whatever the
	// message checks below say.
	if err := s.MarkFoodDeleted(); err != nil {
		return err
	}

	g.Expect(resp.String()).To(ContainSubstring(MsgDeleted), "Expected response message to indicate successful deletion.")

	var body api.APIResponseDTO
	g.Expect(resp.JSON(&body)).To(Succeed())
	g.Expect(body.Msg).To(Equal(MsgDeleted), "Expected Msg to indicate successful deletion.")

	return nil
}

func createFoodWithoutRequiredFields(ctx context.Context, g Gomega, s *State) error {
	food := api.NewEmptyFoodPayload().Build()

	resp, err := s.Client().CreateFood(ctx, food)
	if err != nil {
		return transport(err)
	}

	g.Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), "Expected status code to be BadRequest (400).")

	return nil
}

func editNonExistingFood(ctx context.Context, g Gomega, s *State) error {
	patch := api.NewPatch().Replace(namePatchPath, nonExistingName).Build()

	resp, err := s.Client().EditFood(ctx, s.NonExistingFoodID(), patch)
	if err != nil {
		return transport(err)
	}

	g.Expect(resp.StatusCode).To(Equal(http.StatusNotFound), "Expected status code to be NotFound (404).")
	g.Expect(resp.String()).To(ContainSubstring(MsgNotFound), "Expected response message to indicate that the food was not found.")

	return nil
}

func deleteNonExistingFood(ctx context.Context, g Gomega, s *State) error {
	resp, err := s.Client().DeleteFood(ctx, s.NonExistingFoodID())
	if err != nil {
		return transport(err)
	}

	g.Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), "Expected status code to be BadRequest (400).")
	g.Expect(resp.String()).To(ContainSubstring(MsgUnableDelete), "Expected response message to indicate that the food could not be deleted.")

	return nil
}
