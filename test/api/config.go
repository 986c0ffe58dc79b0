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

package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrConfiguration is returned when the environment does not describe a
// usable test target.
var ErrConfiguration = errors.New("invalid test configuration")

type TestConfig struct {
	BaseURL           string        `envconfig:"API_BASE_URL" validate:"required,url"`
	Username          string        `envconfig:"API_USERNAME" validate:"required"`
	Password          string        `envconfig:"API_PASSWORD" validate:"required"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s" validate:"gt=0"`
	TestTimeout       time.Duration `envconfig:"TEST_TIMEOUT" default:"5m" validate:"gt=0"`
	NonExistingFoodID string        `envconfig:"NON_EXISTING_FOOD_ID" default:"559999999" validate:"required"`
	SkipIntegration   bool          `envconfig:"SKIP_INTEGRATION" default:"false"`
	DebugLogging      bool          `envconfig:"DEBUG_LOGGING" default:"false"`
	LogRequests       bool          `envconfig:"LOG_REQUESTS" default:"false"`
	LogResponses      bool          `envconfig:"LOG_RESPONSES" default:"false"`
}

// Credentials returns the login credentials held by the configuration.
func (c *TestConfig) Credentials() Credentials {
	return Credentials{
		Username: c.Username,
		Password: c.Password,
	}
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if required configuration values are missing.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	config := &TestConfig{}

	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err := validateRequiredFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	envPaths := []string{
		"test/.env",          // From the repository root (cmd runner)
		"../.env",            // From test/api
		"../../.env",         // From test/api/foody and test/api/fake
		"../../../test/.env", // From test/api/suites directory
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Values already present in the environment take precedence.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// envNames maps struct fields to the variables that populate them so errors
// name what the operator must set.
//
//nolint:gochecknoglobals
var envNames = map[string]string{
	"BaseURL":           "API_BASE_URL",
	"Username":          "API_USERNAME",
	"Password":          "API_PASSWORD",
	"RequestTimeout":    "REQUEST_TIMEOUT",
	"TestTimeout":       "TEST_TIMEOUT",
	"NonExistingFoodID": "NON_EXISTING_FOOD_ID",
}

// validateRequiredFields checks that all required configuration values are set.
func validateRequiredFields(config *TestConfig) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	var missing, invalid []string

	for _, fieldError := range fieldErrors {
		name := envNames[fieldError.Field()]

		if fieldError.Tag() == "required" {
			missing = append(missing, name)
			continue
		}

		invalid = append(invalid, fmt.Sprintf("%s (%s)", name, fieldError.Tag()))
	}

	sort.Strings(missing)
	sort.Strings(invalid)

	var problems []string

	if len(missing) > 0 {
		problems = append(problems, "missing required configuration: "+strings.Join(missing, ", "))
	}

	if len(invalid) > 0 {
		problems = append(problems, "invalid configuration: "+strings.Join(invalid, ", "))
	}

	return fmt.Errorf("%w: %s. Please set these environment variables or add them to a .env file", ErrConfiguration, strings.Join(problems, "; "))
}
