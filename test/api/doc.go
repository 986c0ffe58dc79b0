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

// Package api provides integration test utilities for the Foody API.
//
// # Clients
//
// Two kinds of APIClient exist. The login client built by NewAPIClient
// carries no credentials and is only used to exchange a username and
// password for an access token. The session client built by
// NewSessionClient is bound to that token for its whole life and attaches
// it as a bearer token to every request.
//
// Every request carries a fresh W3C traceparent header. Failures are logged
// with the trace ID so the request can be found in the server logs.
//
// Responses are returned whatever their status code. Only a request that
// never produced a response is an error (ErrTransport), because the test
// cases assert on error statuses as much as on successes.
//
// # Configuration
//
// LoadTestConfig reads the environment, optionally seeded from test/.env.
// See TestConfig for the variables.
package api
