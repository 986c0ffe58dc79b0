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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"
)

// Status is the outcome of a single case.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusNotRun Status = "not-run"
)

// FailureKind classifies why a case did not pass.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureSetup     FailureKind = "setup"
	FailureAssertion FailureKind = "assertion"
	FailureTransport FailureKind = "transport"
	FailureError     FailureKind = "error"
	FailurePanic     FailureKind = "panic"
)

// Result is the recorded outcome of one case.
type Result struct {
	Order    int           `json:"order"`
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Failure  FailureKind   `json:"failure,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Report is the outcome of a whole run.
type Report struct {
	Suite       string
	Started     time.Time
	Duration    time.Duration
	SetupErr    error
	TeardownErr error
	Results     []Result
}

// Passed is true when setup, every case and teardown succeeded.
func (r *Report) Passed() bool {
	return r.Err() == nil
}

// Result looks up a case result by order index.
func (r *Report) Result(order int) (Result, bool) {
	for _, result := range r.Results {
		if result.Order == order {
			return result, true
		}
	}

	return Result{}, false
}

// Count returns how many cases ended with the given status.
func (r *Report) Count(status Status) int {
	var n int

	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}

	return n
}

// Err aggregates every failure of the run, or returns nil.
func (r *Report) Err() error {
	var result *multierror.Error

	if r.SetupErr != nil {
		result = multierror.Append(result, r.SetupErr)
	}

	for _, c := range r.Results {
		if c.Status == StatusFailed {
			result = multierror.Append(result, fmt.Errorf("case %d %s: %w", c.Order, c.Name, c.Err))
		}
	}

	if r.TeardownErr != nil {
		result = multierror.Append(result, r.TeardownErr)
	}

	return result.ErrorOrNil()
}

// Render writes a human readable table of the run.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintf(w, "Suite: %s\n", r.Suite)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Case", "Status", "Failure", "Duration", "Message"})
	table.SetAutoWrapText(false)
	table.SetRowLine(true)

	for _, result := range r.Results {
		table.Append([]string{
			strconv.Itoa(result.Order),
			result.Name,
			string(result.Status),
			string(result.Failure),
			result.Duration.Round(time.Millisecond).String(),
			result.Message,
		})
	}

	table.Render()

	if r.SetupErr != nil {
		fmt.Fprintf(w, "Run aborted: %v\n", r.SetupErr)
	}

	if r.TeardownErr != nil {
		fmt.Fprintf(w, "Teardown: %v\n", r.TeardownErr)
	}

	fmt.Fprintf(w, "%d passed, %d failed, %d not run in %s\n",
		r.Count(StatusPassed), r.Count(StatusFailed), r.Count(StatusNotRun), r.Duration.Round(time.Millisecond))
}

type reportJSON struct {
	Suite       string        `json:"suite"`
	Started     time.Time     `json:"started"`
	Duration    time.Duration `json:"duration"`
	Passed      bool          `json:"passed"`
	SetupError  string        `json:"setupError,omitempty"`
	TeardownErr string        `json:"teardownError,omitempty"`
	Results     []Result      `json:"results"`
}

func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Suite:    r.Suite,
		Started:  r.Started,
		Duration: r.Duration,
		Passed:   r.Passed(),
		Results:  r.Results,
	}

	if r.SetupErr != nil {
		out.SetupError = r.SetupErr.Error()
	}

	if r.TeardownErr != nil {
		out.TeardownErr = r.TeardownErr.Error()
	}

	return json.Marshal(out)
}
