// Package analysis runs the four concurrent sub-calls that make up one job
// verification and assembles their outputs into a single Result.
package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/normalize"
	"parttimepal-backend/internal/shared/metrics"
	"parttimepal-backend/internal/shared/telemetry"
)

// Service fans out entity extraction, scam assessment, verification and
// suitability for one posting.
type Service struct {
	Provider llm.Provider
	Model    string
	// ReasoningModel and ThinkingBudget apply to the scam assessment only.
	ReasoningModel string
	ThinkingBudget int
	// RunTimeout bounds the whole run; zero means no run deadline.
	RunTimeout time.Duration
	RedFlags   []RedFlag
}

// Run analyses text. Individual sub-call failures degrade to defaults; only
// caller cancellation, the run deadline or a panic fail the run, and then no
// partial Result is returned.
func (s *Service) Run(ctx context.Context, text string, loc *llm.LatLng) (Result, error) {
	if err := normalize.Validate(text); err != nil {
		return Result{}, err
	}
	if s.Provider == nil {
		return Result{}, llm.ErrNotConfigured
	}
	if s.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RunTimeout)
		defer cancel()
	}

	var (
		entities    Entities
		scam        ScamAnalysis
		grounding   GroundingData
		suitability Suitability
		draft       string
		degraded    [4]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, fell, err := resilient(gctx, "entities", func(c context.Context) (Entities, error) {
			return s.extractEntities(c, text)
		}, defaultEntities)
		entities = v
		degraded[0] = degradedName("entities", fell)
		return err
	})
	g.Go(func() error {
		v, fell, err := resilient(gctx, "scam", func(c context.Context) (ScamAnalysis, error) {
			return s.assessScam(c, text)
		}, func() ScamAnalysis { return s.defaultScam(text) })
		scam = v
		degraded[1] = degradedName("scam", fell)
		return err
	})
	g.Go(func() error {
		v, fell, err := resilient(gctx, "verify", func(c context.Context) (GroundingData, error) {
			return s.verify(c, text, loc)
		}, defaultGrounding)
		grounding = v
		degraded[2] = degradedName("verify", fell)
		return err
	})
	g.Go(func() error {
		v, fell, err := resilient(gctx, "suitability", func(c context.Context) (suitabilityOutput, error) {
			return s.assessSuitability(c, text)
		}, defaultSuitability)
		suitability, draft = v.Suitability, v.Draft
		degraded[3] = degradedName("suitability", fell)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("analysis run: %w", err)
	}

	res := Result{
		Entities:         entities,
		ScamAnalysis:     scam,
		Suitability:      suitability,
		GroundingData:    grounding,
		ApplicationDraft: draft,
	}
	for _, name := range degraded {
		if name != "" {
			res.Degraded = append(res.Degraded, name)
		}
	}
	return res, nil
}

// resilient runs fn and substitutes fallback on failure while the run itself
// is still alive. A panic or a dead run context propagates as an error.
func resilient[T any](ctx context.Context, call string, fn func(context.Context) (T, error), fallback func() T) (out T, degraded bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out, degraded, err = zero, false, fmt.Errorf("%w: %s: %v", ErrPanic, call, r)
		}
	}()

	v, callErr := fn(ctx)
	if callErr == nil {
		return v, false, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		var zero T
		return zero, false, ctxErr
	}
	metrics.Fallback(call)
	telemetry.Warn("analysis.fallback", map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
		"call":       call,
		"timeout":    llm.IsTimeout(callErr),
		"error":      callErr,
	})
	return fallback(), true, nil
}

func degradedName(call string, fell bool) string {
	if fell {
		return call
	}
	return ""
}
