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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/foody/test/api"
	"github.com/unikorn-cloud/foody/test/api/fake"
)

const (
	username = "chef"
	password = "s3cret"
)

var traceParentPattern = regexp.MustCompile(`^00-[0-9a-f]{32}-[0-9a-f]{16}-01$`)

func testConfig(baseURL string) *api.TestConfig {
	return &api.TestConfig{
		BaseURL:           baseURL,
		Username:          username,
		Password:          password,
		RequestTimeout:    5 * time.Second,
		TestTimeout:       time.Minute,
		NonExistingFoodID: "559999999",
	}
}

var _ = Describe("APIClient", func() {
	var (
		foody  *fake.Server
		server *httptest.Server
		config *api.TestConfig
	)

	BeforeEach(func() {
		foody = fake.New(username, password)
		server = httptest.NewServer(foody)
		DeferCleanup(server.Close)

		config = testConfig(server.URL)
	})

	Context("When authenticating", func() {
		It("should return an access token for valid credentials", func(ctx SpecContext) {
			token, err := api.Authenticate(ctx, config, config.Credentials(), GinkgoLogr)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())
		})

		It("should return an empty token for rejected credentials", func(ctx SpecContext) {
			token, err := api.Authenticate(ctx, config, api.Credentials{Username: username, Password: "wrong"}, GinkgoLogr)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})

		It("should refuse to send empty credentials", func(ctx SpecContext) {
			_, err := api.Authenticate(ctx, config, api.Credentials{Username: username}, GinkgoLogr)
			Expect(err).To(MatchError(api.ErrMissingCredentials))
			Expect(foody.Requests()).To(BeEmpty())
		})

		It("should fail with a transport error when the API is down", func(ctx SpecContext) {
			server.Close()

			_, err := api.Authenticate(ctx, config, config.Credentials(), GinkgoLogr)
			Expect(err).To(MatchError(api.ErrTransport))
		})
	})

	Context("When using a session client", func() {
		var client *api.APIClient

		BeforeEach(func(ctx SpecContext) {
			token, err := api.Authenticate(ctx, config, config.Credentials(), GinkgoLogr)
			Expect(err).NotTo(HaveOccurred())

			client, err = api.NewSessionClient(config, token, GinkgoLogr)
			Expect(err).NotTo(HaveOccurred())

			DeferCleanup(func() {
				_ = client.Close()
			})
		})

		It("should not be built without a token", func() {
			_, err := api.NewSessionClient(config, "", GinkgoLogr)
			Expect(err).To(MatchError(api.ErrEmptyToken))
		})

		It("should send the bearer token and a fresh traceparent on every request", func(ctx SpecContext) {
			first, err := client.ListFoods(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.StatusCode).To(Equal(http.StatusOK))

			second, err := client.ListFoods(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.TraceID).NotTo(Equal(first.TraceID))

			for _, resp := range []*api.Response{first, second} {
				Expect(resp.TraceParent).To(MatchRegexp(traceParentPattern.String()))
				Expect(resp.TraceParent).To(HavePrefix("00-" + resp.TraceID + "-"))
			}

			requests := foody.Requests()
			Expect(requests[len(requests)-1].TraceParent).To(Equal(second.TraceParent))

			Expect(requests).To(HaveLen(3))

			for _, r := range requests[1:] {
				Expect(r.Authorized).To(BeTrue())
				Expect(r.TraceParent).To(MatchRegexp(traceParentPattern.String()))
			}
		})

		It("should return error statuses as responses", func(ctx SpecContext) {
			resp, err := client.DeleteFood(ctx, config.NonExistingFoodID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(resp.String()).To(ContainSubstring(fake.MsgUnableDelete))
		})

		It("should decode numeric food ids", func(ctx SpecContext) {
			resp, err := client.CreateFood(ctx, api.NewFoodPayload().Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var created api.APIResponseDTO
			Expect(resp.JSON(&created)).To(Succeed())
			Expect(created.FoodID).To(Equal(api.FoodID("559000001")))
		})

		It("should apply JSON patches", func(ctx SpecContext) {
			foodID := api.CreateFoodWithCleanup(ctx, client, api.NewFoodPayload().WithUniqueName("patch").Build())

			resp, err := client.EditFood(ctx, foodID, api.NewPatch().Replace("/name", "string").Build())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			resp, err = client.ListFoods(ctx)
			Expect(err).NotTo(HaveOccurred())

			var foods []api.FoodDTO
			Expect(resp.JSON(&foods)).To(Succeed())
			api.VerifyFoodPresence(foods, "string")
		})

		It("should refuse requests once closed", func(ctx SpecContext) {
			Expect(client.Close()).To(Succeed())
			Expect(client.Close()).To(MatchError(api.ErrClientClosed))

			_, err := client.ListFoods(ctx)
			Expect(err).To(MatchError(api.ErrClientClosed))
		})
	})
})

var _ = Describe("Fixtures", Ordered, func() {
	var (
		foody  *fake.Server
		client *api.APIClient
		name   string
	)

	BeforeAll(func(ctx SpecContext) {
		foody = fake.New(username, password)

		server := httptest.NewServer(foody)
		DeferCleanup(server.Close)

		config := testConfig(server.URL)

		token, err := api.Authenticate(ctx, config, config.Credentials(), GinkgoLogr)
		Expect(err).NotTo(HaveOccurred())

		client, err = api.NewSessionClient(config, token, GinkgoLogr)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should list a created food while the spec runs", func(ctx SpecContext) {
		payload := api.NewFoodPayload().WithUniqueName("fixture").Build()
		name = payload.Name

		Expect(api.CreateFoodWithCleanup(ctx, client, payload)).NotTo(BeEmpty())
		Expect(foody.Foods()).To(HaveLen(1))
	})

	It("should delete the food once the spec finishes", func() {
		Expect(name).To(HavePrefix("fixture-"))
		Expect(foody.Foods()).To(BeEmpty())
	})
})

var _ = DescribeTable("Authenticate with an unusable login response",
	func(ctx SpecContext, status int, contentType, body string) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", contentType)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		DeferCleanup(server.Close)

		config := testConfig(server.URL)

		token, err := api.Authenticate(ctx, config, config.Credentials(), GinkgoLogr)
		Expect(err).NotTo(HaveOccurred())
		Expect(token).To(BeEmpty())
	},
	Entry("an HTML page", http.StatusOK, "text/html", "<html><body>Service Unavailable</body></html>"),
	Entry("plain text", http.StatusBadGateway, "text/plain", "bad gateway"),
	Entry("an empty body", http.StatusOK, "application/json", ""),
	Entry("an object without accessToken", http.StatusOK, "application/json", `{"token":"abc"}`),
	Entry("a numeric accessToken", http.StatusOK, "application/json", `{"accessToken":42}`),
	Entry("a null accessToken", http.StatusOK, "application/json", `{"accessToken":null}`),
	Entry("a JSON array", http.StatusOK, "application/json", `["abc"]`),
)

var _ = DescribeTable("FoodID decoding",
	func(payload string, expected api.FoodID) {
		var body api.APIResponseDTO
		Expect(json.Unmarshal([]byte(payload), &body)).To(Succeed())
		Expect(body.FoodID).To(Equal(expected))
	},
	Entry("a number", `{"foodId":42}`, api.FoodID("42")),
	Entry("a string", `{"foodId":"abc-1"}`, api.FoodID("abc-1")),
	Entry("null", `{"foodId":null}`, api.FoodID("")),
	Entry("absent", `{"msg":"Successfully created"}`, api.FoodID("")),
	Entry("a capitalised key", `{"Msg":"ok","FoodId":7}`, api.FoodID("7")),
)

var _ = It("should reject fractional food ids", func() {
	var body api.APIResponseDTO
	Expect(json.Unmarshal([]byte(`{"foodId":1.5}`), &body)).NotTo(Succeed())
})
