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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package suites

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/foody/pkg/sequencer"
	"github.com/unikorn-cloud/foody/test/api/foody"
)

var _ = Describe("Foody API", Ordered, ContinueOnFailure, Label("integration"), func() {
	var (
		ctx   context.Context
		state *foody.State
	)

	BeforeAll(func() {
		if configErr != nil {
			Skip(fmt.Sprintf("integration tests are not configured: %v", configErr))
		}

		if config.SkipIntegration {
			Skip("SKIP_INTEGRATION is set")
		}

		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(context.Background(), config.TestTimeout)
		DeferCleanup(cancel)

		client, err := foody.Login(ctx, config, GinkgoLogr)
		Expect(err).NotTo(HaveOccurred(), "authentication failed, no food case can run")

		state = foody.NewState(client, config.NonExistingFoodID, GinkgoLogr)

		DeferCleanup(func() {
			Expect(state.Close(context.Background())).To(Succeed())
		})
	})

	for _, c := range sequencer.Sorted(foody.Cases()) {
		It(fmt.Sprintf("%d %s", c.Order, c.Name), func() {
			Expect(c.Run(ctx, Default, state)).To(Succeed())
		})
	}
})
