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

package foody_test

import (
	"net/http"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/unikorn-cloud/foody/test/api"
	"github.com/unikorn-cloud/foody/test/api/foody"
	"github.com/unikorn-cloud/foody/test/api/foody/mock"
)

const nonExistingFoodID = "559999999"

func TestFoodIDIsWrittenOnce(t *testing.T) {
	t.Parallel()

	s := foody.NewState(nil, nonExistingFoodID, logr.Discard())

	_, err := s.FoodID()
	require.ErrorIs(t, err, foody.ErrFoodNotCreated)

	require.ErrorIs(t, s.SetFoodID(""), foody.ErrEmptyFoodID)
	require.NoError(t, s.SetFoodID("42"))
	require.ErrorIs(t, s.SetFoodID("43"), foody.ErrFoodAlreadyCreated)

	id, err := s.FoodID()
	require.NoError(t, err)
	require.Equal(t, "42", id)
}

func TestDeletedFoodIsNoLongerReadable(t *testing.T) {
	t.Parallel()

	s := foody.NewState(nil, nonExistingFoodID, logr.Discard())

	require.ErrorIs(t, s.MarkFoodDeleted(), foody.ErrFoodNotCreated)
	require.NoError(t, s.SetFoodID("42"))
	require.NoError(t, s.MarkFoodDeleted())

	_, err := s.FoodID()
	require.ErrorIs(t, err, foody.ErrFoodDeleted)
	require.ErrorIs(t, s.MarkFoodDeleted(), foody.ErrFoodDeleted)
}

// TestCloseDeletesLeftoverFood ensures a food the run did not delete is
// removed before the client is released.
func TestCloseDeletesLeftoverFood(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	client := mock.NewMockClient(c)

	gomock.InOrder(
		client.EXPECT().DeleteFood(gomock.Any(), "42").Return(&api.Response{StatusCode: http.StatusOK}, nil),
		client.EXPECT().Close().Return(nil),
	)

	s := foody.NewState(client, nonExistingFoodID, logr.Discard())
	require.NoError(t, s.SetFoodID("42"))
	require.NoError(t, s.Close(t.Context()))

	_, err := s.FoodID()
	require.ErrorIs(t, err, foody.ErrFoodDeleted)
}

// TestCloseIgnoresCleanupFailures ensures cleanup is best effort.
func TestCloseIgnoresCleanupFailures(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	client := mock.NewMockClient(c)

	gomock.InOrder(
		client.EXPECT().DeleteFood(gomock.Any(), "42").Return(nil, api.ErrTransport),
		client.EXPECT().Close().Return(nil),
	)

	s := foody.NewState(client, nonExistingFoodID, logr.Discard())
	require.NoError(t, s.SetFoodID("42"))
	require.NoError(t, s.Close(t.Context()))
}

func TestCloseWithoutFoodOnlyClosesClient(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()

	client := mock.NewMockClient(c)
	client.EXPECT().Close().Return(api.ErrClientClosed)

	s := foody.NewState(client, nonExistingFoodID, logr.Discard())

	err := s.Close(t.Context())
	require.ErrorIs(t, err, api.ErrClientClosed)
}

func TestCloseNilState(t *testing.T) {
	t.Parallel()

	var s *foody.State

	require.NoError(t, s.Close(t.Context()))
}
