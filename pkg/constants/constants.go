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

package constants

//nolint:gochecknoglobals
var (
	// Application is the application name.
	Application = "foody-api-tests"

	// Version is the application version, set at build time with
	// -ldflags "-X github.com/unikorn-cloud/foody/pkg/constants.Version=...".
	Version = "0.0.0"

	// Revision is the git revision, set at build time with
	// -ldflags "-X github.com/unikorn-cloud/foody/pkg/constants.Revision=...".
	Revision = "unknown"
)
