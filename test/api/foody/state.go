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

package foody

//go:generate mockgen -source=state.go -destination=mock/client.go -package=mock

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/unikorn-cloud/foody/test/api"
)

var (
	// ErrFoodNotCreated is returned when the food reference is read before
	// the create case stored it.
	ErrFoodNotCreated = errors.New("food has not been created")

	// ErrFoodAlreadyCreated is returned on a second write of the reference.
	ErrFoodAlreadyCreated = errors.New("food has already been created")

	// ErrFoodDeleted is returned when the reference is read after deletion.
	ErrFoodDeleted = errors.New("food has been deleted")

	// ErrEmptyFoodID is returned when an empty reference is stored.
	ErrEmptyFoodID = errors.New("empty food id")
)

// Client is the session client surface the cases use.
type Client interface {
	CreateFood(ctx context.Context, food api.FoodDTO) (*api.Response, error)
	EditFood(ctx context.Context, foodID string, operations []api.PatchOperation) (*api.Response, error)
	ListFoods(ctx context.Context) (*api.Response, error)
	DeleteFood(ctx context.Context, foodID string) (*api.Response, error)
	Close() error
}

// State is shared by every case of a run. The client is fixed at
// construction; the food reference is written once by the create case and
// read by the edit and delete cases.
type State struct {
	client            Client
	nonExistingFoodID string
	logger            logr.Logger

	foodID  string
	deleted bool
}

// NewState binds the session client for the whole run.
func NewState(client Client, nonExistingFoodID string, logger logr.Logger) *State {
	return &State{
		client:            client,
		nonExistingFoodID: nonExistingFoodID,
		logger:            logger,
	}
}

// Client returns the session client.
func (s *State) Client() Client {
	return s.client
}

// NonExistingFoodID is the sentinel id negative cases use.
func (s *State) NonExistingFoodID() string {
	return s.nonExistingFoodID
}

// SetFoodID stores the created food reference.
func (s *State) SetFoodID(foodID string) error {
	if foodID == "" {
		return ErrEmptyFoodID
	}

	if s.foodID != "" {
		return fmt.Errorf("%w: %s", ErrFoodAlreadyCreated, s.foodID)
	}

	s.foodID = foodID

	s.logger.V(1).Info("stored created food", "foodID", foodID)

	return nil
}

// FoodID returns the live food reference.
func (s *State) FoodID() (string, error) {
	if s.foodID == "" {
		return "", ErrFoodNotCreated
	}

	if s.deleted {
		return "", fmt.Errorf("%w: %s", ErrFoodDeleted, s.foodID)
	}

	return s.foodID, nil
}

// MarkFoodDeleted records that the live food no longer exists.
func (s *State) MarkFoodDeleted() error {
	if _, err := s.FoodID(); err != nil {
		return err
	}

	s.deleted = true

	return nil
}

// Close is the suite teardown. A food that is still live is deleted on a
// best-effort basis before the client is released.
func (s *State) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}

	if foodID, err := s.FoodID(); err == nil {
		s.cleanupFood(ctx, foodID)
	}

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("closing session client: %w", err)
	}

	return nil
}

func (s *State) cleanupFood(ctx context.Context, foodID string) {
	log := s.logger.WithValues("foodID", foodID)

	log.Info("cleaning up food left behind by the run")

	resp, err := s.client.DeleteFood(ctx, foodID)

	switch {
	case err != nil:
		log.Error(err, "failed to delete leftover food")
	case resp.StatusCode != http.StatusOK:
		log.Info("leftover food was not deleted", "status", resp.StatusCode, "body", resp.String())
	default:
		s.deleted = true

		log.Info("deleted leftover food")
	}
}
