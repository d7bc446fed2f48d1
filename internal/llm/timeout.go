package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parttimepal-backend/internal/shared/metrics"
	"parttimepal-backend/internal/shared/telemetry"
)

// WithTimeout bounds every call to base by d. There is no retry: a call that
// overruns fails with ErrProviderTimeout and the caller decides how to degrade.
func WithTimeout(base Provider, d time.Duration) Provider {
	if base == nil {
		return nil
	}
	if d <= 0 {
		return base
	}
	return timedProvider{base: base, timeout: d}
}

type timedProvider struct {
	base    Provider
	timeout time.Duration
}

func (p timedProvider) Generate(ctx context.Context, req Request) (Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.base.Generate(callCtx, req)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return Response{}, fmt.Errorf("%w: %s after %s: %w", ErrProviderTimeout, req.Call, p.timeout, err)
	}
	return Response{}, err
}

// IsTimeout reports whether err came from a per-call or caller deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrProviderTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// Instrument records latency and outcome of every call.
func Instrument(base Provider) Provider {
	if base == nil {
		return nil
	}
	return instrumentedProvider{base: base}
}

type instrumentedProvider struct {
	base Provider
}

func (p instrumentedProvider) Generate(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	resp, err := p.base.Generate(ctx, req)
	elapsed := time.Since(start)

	call := req.Call
	if call == "" {
		call = "unnamed"
	}
	outcome := "ok"
	switch {
	case err == nil:
	case IsTimeout(err):
		outcome = "timeout"
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	default:
		outcome = "error"
	}
	metrics.ProviderCall(call, outcome, elapsed)

	fields := map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"call":        call,
		"model":       req.Model,
		"outcome":     outcome,
		"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
		"chunks":      len(resp.Chunks),
	}
	if err != nil {
		fields["error"] = err.Error()
		telemetry.Warn("provider.call", fields)
	} else {
		telemetry.Info("provider.call", fields)
	}
	return resp, err
}
