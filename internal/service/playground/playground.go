// Package playground runs ad-hoc generations and A/B comparisons.
package playground

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-config-console/internal/service/generation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrValidation is returned for a config missing prompt, model or test data.
var ErrValidation = errors.New("invalid playground config")

// Executor runs a single generation.
type Executor interface {
	Execute(ctx context.Context, promptID, modelID uuid.UUID, testData map[string]string) (*generation.Result, error)
}

// Config is one ephemeral (prompt, model, test data) triple. It lives only
// for the duration of one orchestration call and is never persisted.
type Config struct {
	PromptID uuid.UUID         `json:"prompt_id"`
	ModelID  uuid.UUID         `json:"model_id"`
	TestData map[string]string `json:"test_data"`
}

// Validate checks the preconditions the UI normally enforces.
func (c *Config) Validate() error {
	if c.PromptID == uuid.Nil {
		return fmt.Errorf("%w: prompt id is required", ErrValidation)
	}
	if c.ModelID == uuid.Nil {
		return fmt.Errorf("%w: model id is required", ErrValidation)
	}
	if len(c.TestData) == 0 {
		return fmt.Errorf("%w: at least one test data entry is required", ErrValidation)
	}
	return nil
}

// RunResult carries one or two generation results.
type RunResult struct {
	ResultA *generation.Result `json:"result_a"`
	ResultB *generation.Result `json:"result_b,omitempty"`
}

// Orchestrator runs one generation, or two concurrently in compare mode.
type Orchestrator struct {
	executor       Executor
	compareTimeout time.Duration
	logger         *zap.Logger
}

// NewOrchestrator creates a new playground orchestrator.
func NewOrchestrator(executor Executor, compareTimeout time.Duration, logger *zap.Logger) *Orchestrator {
	if compareTimeout <= 0 {
		compareTimeout = 120 * time.Second
	}
	return &Orchestrator{
		executor:       executor,
		compareTimeout: compareTimeout,
		logger:         logger,
	}
}

// Run executes configA, and configB alongside it when present.
//
// In compare mode both legs start concurrently so neither leg's latency
// bleeds into the other's wall-clock reading. The first failure fails the
// whole call and cancels the surviving leg; no partial compare result is
// returned. The run as a whole is bounded by the compare timeout so one
// slow provider cannot hold the call open indefinitely.
func (o *Orchestrator) Run(ctx context.Context, configA Config, configB *Config) (*RunResult, error) {
	if err := configA.Validate(); err != nil {
		return nil, err
	}

	if configB == nil {
		result, err := o.executor.Execute(ctx, configA.PromptID, configA.ModelID, configA.TestData)
		if err != nil {
			return nil, err
		}
		return &RunResult{ResultA: result}, nil
	}

	if err := configB.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.compareTimeout)
	defer cancel()

	var resultA, resultB *generation.Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		resultA, err = o.executor.Execute(gctx, configA.PromptID, configA.ModelID, configA.TestData)
		return err
	})
	g.Go(func() error {
		var err error
		resultB, err = o.executor.Execute(gctx, configB.PromptID, configB.ModelID, configB.TestData)
		return err
	})

	if err := g.Wait(); err != nil {
		o.logger.Warn("compare run failed", zap.Error(err))
		return nil, err
	}

	return &RunResult{ResultA: resultA, ResultB: resultB}, nil
}
