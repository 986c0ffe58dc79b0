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

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/unikorn-cloud/foody/pkg/sequencer"
	"github.com/unikorn-cloud/foody/test/api"
)

// Login authenticates once with the configured credentials and returns a
// session client bound to the issued token.
func Login(ctx context.Context, config *api.TestConfig, logger logr.Logger) (*api.APIClient, error) {
	token, err := api.Authenticate(ctx, config, config.Credentials(), logger.WithName("login"))
	if err != nil {
		return nil, err
	}

	client, err := api.NewSessionClient(config, token, logger.WithName("session"))
	if err != nil {
		return nil, fmt.Errorf("authentication as %s returned no access token: %w", config.Username, err)
	}

	return client, nil
}

// NewSuite describes the whole food lifecycle against the configured API.
func NewSuite(config *api.TestConfig, logger logr.Logger) sequencer.Suite[*State] {
	return sequencer.Suite[*State]{
		Name: SuiteName,
		Setup: func(ctx context.Context) (*State, error) {
			client, err := Login(ctx, config, logger)
			if err != nil {
				return nil, err
			}

			return NewState(client, config.NonExistingFoodID, logger.WithName("state")), nil
		},
		Teardown: func(ctx context.Context, state *State) error {
			return state.Close(ctx)
		},
		Cases: Cases(),
	}
}

// Run executes the suite once, bounded by the configured test timeout.
// Teardown gets one request timeout of its own, so a food created before
// the deadline or an interrupt is still deleted.
func Run(ctx context.Context, config *api.TestConfig, logger logr.Logger, opts ...sequencer.Option) (*sequencer.Report, error) {
	opts = append([]sequencer.Option{
		sequencer.WithLogger(logger),
		sequencer.WithTeardownTimeout(config.RequestTimeout),
	}, opts...)

	s, err := sequencer.New(NewSuite(config, logger), opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.TestTimeout)
	defer cancel()

	return s.Run(ctx)
}
