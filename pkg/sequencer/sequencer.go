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

// Package sequencer runs a fixed, numbered list of dependent test cases
// over a shared state value. Setup runs once before the first case and
// teardown once after the last, whatever the cases did in between.
//
// Cases run strictly one after another on the caller's goroutine, ordered
// by their declared order index. A failing case never stops the cases
// after it: cases share data, not pass/fail state.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/onsi/gomega"
	"github.com/spjmurray/go-util/pkg/set"
)

// CaseFunc is the arrange/act/assert body of a case. Expectations are made
// through g; a failed expectation ends the case immediately.
type CaseFunc[S any] func(ctx context.Context, g gomega.Gomega, state S) error

// Case is one ordered unit of the suite.
type Case[S any] struct {
	// Order is the 1-based execution position.
	Order int
	Name  string
	Run   CaseFunc[S]
}

// Suite declares the shared state lifecycle and the cases that use it.
type Suite[S any] struct {
	Name string

	// Setup acquires the shared state. Any error aborts the run.
	Setup func(ctx context.Context) (S, error)

	// Teardown releases the shared state. It is called exactly once,
	// including after a failed Setup, and must cope with partial state.
	Teardown func(ctx context.Context, state S) error

	Cases []Case[S]
}

// DefaultTeardownTimeout bounds teardown, which runs detached from the
// run context's cancellation.
const DefaultTeardownTimeout = 30 * time.Second

type options struct {
	logger          logr.Logger
	hook            TransitionHook
	teardownTimeout time.Duration
}

// Option customizes a Sequencer.
type Option func(*options)

// WithLogger sets the logger used for progress and failures.
func WithLogger(logger logr.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTransitionHook registers a callback for phase changes.
func WithTransitionHook(hook TransitionHook) Option {
	return func(o *options) {
		o.hook = hook
	}
}

// WithTeardownTimeout bounds the teardown call.
func WithTeardownTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.teardownTimeout = timeout
	}
}

// Sequencer executes a Suite exactly once.
type Sequencer[S any] struct {
	suite   Suite[S]
	cases   []Case[S]
	options options

	started atomic.Bool
	phase   atomic.Int32
	current atomic.Int64
}

// New validates the suite and fixes its execution order.
func New[S any](suite Suite[S], opts ...Option) (*Sequencer[S], error) {
	o := options{
		logger:          logr.Discard(),
		teardownTimeout: DefaultTeardownTimeout,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(suite); err != nil {
		return nil, err
	}

	return &Sequencer[S]{
		suite:   suite,
		cases:   Sorted(suite.Cases),
		options: o,
	}, nil
}

// Sorted returns a copy of cases in execution order.
func Sorted[S any](cases []Case[S]) []Case[S] {
	cases = slices.Clone(cases)

	slices.SortFunc(cases, func(a, b Case[S]) int {
		return a.Order - b.Order
	})

	return cases
}

func validate[S any](suite Suite[S]) error {
	if suite.Setup == nil {
		return fmt.Errorf("%w: suite %q has no setup", ErrInvalidSuite, suite.Name)
	}

	if len(suite.Cases) == 0 {
		return fmt.Errorf("%w: suite %q declares no cases", ErrInvalidSuite, suite.Name)
	}

	orders := make([]int, 0, len(suite.Cases))
	names := make([]string, 0, len(suite.Cases))

	for _, c := range suite.Cases {
		if c.Name == "" {
			return fmt.Errorf("%w: case with order %d has no name", ErrInvalidSuite, c.Order)
		}

		if c.Order < 1 {
			return fmt.Errorf("%w: case %q has order %d, orders start at 1", ErrInvalidSuite, c.Name, c.Order)
		}

		if c.Run == nil {
			return fmt.Errorf("%w: case %q has no body", ErrInvalidSuite, c.Name)
		}

		orders = append(orders, c.Order)
		names = append(names, c.Name)
	}

	if count(set.New[int](orders...)) != len(orders) {
		return fmt.Errorf("%w: suite %q has duplicate case orders %v", ErrInvalidSuite, suite.Name, orders)
	}

	if count(set.New[string](names...)) != len(names) {
		return fmt.Errorf("%w: suite %q has duplicate case names", ErrInvalidSuite, suite.Name)
	}

	return nil
}

func count[T comparable](s set.Set[T]) int {
	var n int

	for range s.All() {
		n++
	}

	return n
}

// Cases returns the cases in execution order.
func (s *Sequencer[S]) Cases() []Case[S] {
	return slices.Clone(s.cases)
}

// Phase returns the current lifecycle phase.
func (s *Sequencer[S]) Phase() Phase {
	return Phase(s.phase.Load())
}

// Current returns the order index of the running case, or zero.
func (s *Sequencer[S]) Current() int {
	return int(s.current.Load())
}

func (s *Sequencer[S]) transition(phase Phase, order int) {
	s.phase.Store(int32(phase))
	s.current.Store(int64(order))

	if s.options.hook != nil {
		s.options.hook(phase, order)
	}
}

// Run performs setup, every case in order and teardown. Case, setup and
// teardown failures are recorded in the report; the returned error is only
// set when the sequencer itself cannot run.
func (s *Sequencer[S]) Run(ctx context.Context) (*Report, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	log := s.options.logger.WithValues("suite", s.suite.Name)

	report := &Report{
		Suite:   s.suite.Name,
		Started: time.Now(),
		Results: make([]Result, 0, len(s.cases)),
	}

	s.transition(SettingUp, 0)

	log.V(1).Info("setting up suite")

	state, err := s.setup(ctx)
	if err != nil {
		report.SetupErr = fmt.Errorf("%w: %w", ErrSetup, err)

		log.Error(err, "suite setup failed, no case will run")

		for _, c := range s.cases {
			report.Results = append(report.Results, Result{
				Order:   c.Order,
				Name:    c.Name,
				Status:  StatusNotRun,
				Failure: FailureSetup,
				Err:     report.SetupErr,
				Message: report.SetupErr.Error(),
			})
		}
	} else {
		for _, c := range s.cases {
			s.transition(Running, c.Order)

			report.Results = append(report.Results, s.runCase(ctx, log, c, state))
		}
	}

	s.transition(TearingDown, 0)

	log.V(1).Info("tearing down suite")

	if err := s.teardown(ctx, state); err != nil {
		report.TeardownErr = fmt.Errorf("%w: %w", ErrTeardown, err)

		log.Error(err, "suite teardown failed")
	}

	report.Duration = time.Since(report.Started)

	s.transition(Done, 0)

	return report, nil
}

func (s *Sequencer[S]) setup(ctx context.Context) (state S, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return s.suite.Setup(ctx)
}

// teardown keeps the run context's values but not its cancellation, so a
// timed out or interrupted run still releases what it created.
func (s *Sequencer[S]) teardown(ctx context.Context, state S) (err error) {
	if s.suite.Teardown == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.options.teardownTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return s.suite.Teardown(ctx, state)
}

func (s *Sequencer[S]) runCase(ctx context.Context, log logr.Logger, c Case[S], state S) (result Result) {
	log = log.WithValues("order", c.Order, "case", c.Name)

	result = Result{
		Order: c.Order,
		Name:  c.Name,
	}

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusFailed

			if failure, ok := r.(assertionFailure); ok {
				result.Failure = FailureAssertion
				result.Err = &AssertionError{Message: failure.message}
			} else {
				result.Failure = FailurePanic
				result.Err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}

		result.Duration = time.Since(start)

		if result.Err != nil {
			result.Message = result.Err.Error()

			log.Info("case failed", "failure", result.Failure, "error", result.Message, "duration", result.Duration)

			return
		}

		log.Info("case passed", "duration", result.Duration)
	}()

	g := gomega.NewGomega(func(message string, _ ...int) {
		panic(assertionFailure{message: message})
	})

	log.V(1).Info("running case")

	if err := c.Run(ctx, g, state); err != nil {
		result.Status = StatusFailed
		result.Failure = classify(err)
		result.Err = err

		return result
	}

	result.Status = StatusPassed

	return result
}

func classify(err error) FailureKind {
	var assertion *AssertionError

	switch {
	case errors.As(err, &assertion):
		return FailureAssertion
	case errors.Is(err, ErrTransport):
		return FailureTransport
	}

	return FailureError
}
