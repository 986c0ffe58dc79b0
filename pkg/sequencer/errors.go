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

package sequencer

import (
	"errors"
)

var (
	// ErrInvalidSuite is raised by New when the suite declaration is unusable.
	ErrInvalidSuite = errors.New("invalid suite")

	// ErrAlreadyRun is returned when Run is called more than once.
	ErrAlreadyRun = errors.New("sequencer already run")

	// ErrSetup wraps any failure of the one-time setup. It aborts the run.
	ErrSetup = errors.New("suite setup failed")

	// ErrTeardown wraps any failure of the one-time teardown.
	ErrTeardown = errors.New("suite teardown failed")

	// ErrTransport should be wrapped by cases when a request never produced
	// a response, so the failure is reported as a transport failure rather
	// than a generic error.
	ErrTransport = errors.New("transport failure")

	// ErrPanic wraps a value recovered from a panicking case or hook.
	ErrPanic = errors.New("panic")
)

// AssertionError is the failure recorded when a case's Gomega
// expectation is not met.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Message
}

// assertionFailure is thrown through the case body by the Gomega fail
// handler and caught by the sequencer, the same way Ginkgo aborts a spec.
type assertionFailure struct {
	message string
}
