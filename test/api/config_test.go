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
package api_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/foody/test/api"
)

// setenv sets a variable for the current spec only. Empty values are still
// set so a developer's .env file cannot fill them in.
func setenv(name, value string) {
	previous, existed := os.LookupEnv(name)

	Expect(os.Setenv(name, value)).To(Succeed())

	DeferCleanup(func() {
		if existed {
			_ = os.Setenv(name, previous)
			return
		}

		_ = os.Unsetenv(name)
	})
}

var _ = Describe("LoadTestConfig", Serial, func() {
	BeforeEach(func() {
		for _, name := range []string{"REQUEST_TIMEOUT", "TEST_TIMEOUT", "NON_EXISTING_FOOD_ID", "SKIP_INTEGRATION", "DEBUG_LOGGING", "LOG_REQUESTS", "LOG_RESPONSES"} {
			previous, existed := os.LookupEnv(name)
			Expect(os.Unsetenv(name)).To(Succeed())

			if existed {
				DeferCleanup(os.Setenv, name, previous)
			}
		}
	})

	It("should apply defaults to optional settings", func() {
		setenv("API_BASE_URL", "https://foody.example.com")
		setenv("API_USERNAME", "chef")
		setenv("API_PASSWORD", "s3cret")

		config, err := api.LoadTestConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(config.BaseURL).To(Equal("https://foody.example.com"))
		Expect(config.Credentials()).To(Equal(api.Credentials{Username: "chef", Password: "s3cret"}))
		Expect(config.RequestTimeout).To(Equal(30 * time.Second))
		Expect(config.TestTimeout).To(Equal(5 * time.Minute))
		Expect(config.NonExistingFoodID).To(Equal("559999999"))
		Expect(config.SkipIntegration).To(BeFalse())
	})

	It("should honour overrides", func() {
		setenv("API_BASE_URL", "http://localhost:5000")
		setenv("API_USERNAME", "chef")
		setenv("API_PASSWORD", "s3cret")
		setenv("REQUEST_TIMEOUT", "2s")
		setenv("NON_EXISTING_FOOD_ID", "1")
		setenv("LOG_REQUESTS", "true")

		config, err := api.LoadTestConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(config.RequestTimeout).To(Equal(2 * time.Second))
		Expect(config.NonExistingFoodID).To(Equal("1"))
		Expect(config.LogRequests).To(BeTrue())
	})

	It("should name every missing variable", func() {
		setenv("API_BASE_URL", "")
		setenv("API_USERNAME", "")
		setenv("API_PASSWORD", "")

		_, err := api.LoadTestConfig()
		Expect(err).To(MatchError(api.ErrConfiguration))
		Expect(err.Error()).To(ContainSubstring("missing required configuration: API_BASE_URL, API_PASSWORD, API_USERNAME"))
	})

	It("should reject malformed values", func() {
		setenv("API_BASE_URL", "not a url")
		setenv("API_USERNAME", "chef")
		setenv("API_PASSWORD", "s3cret")

		_, err := api.LoadTestConfig()
		Expect(err).To(MatchError(api.ErrConfiguration))
		Expect(err.Error()).To(ContainSubstring("API_BASE_URL (url)"))
	})

	It("should reject unparsable durations", func() {
		setenv("API_BASE_URL", "http://localhost:5000")
		setenv("API_USERNAME", "chef")
		setenv("API_PASSWORD", "s3cret")
		setenv("REQUEST_TIMEOUT", "soon")

		_, err := api.LoadTestConfig()
		Expect(err).To(MatchError(api.ErrConfiguration))
	})
})
