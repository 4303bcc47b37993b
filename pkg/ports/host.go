package ports

import (
	"context"
	"errors"

	"github.com/aretw0/summarize/pkg/domain"
)

// HostRunner is the experiment runner that receives finished trials.
type HostRunner interface {
	// FinishTrial is called exactly once per trial, after the finish control was used.
	FinishTrial(ctx context.Context, result domain.TrialResult) error
}

// HostFunc adapts a plain function to the HostRunner interface.
type HostFunc func(ctx context.Context, result domain.TrialResult) error

// FinishTrial calls f(ctx, result).
func (f HostFunc) FinishTrial(ctx context.Context, result domain.TrialResult) error {
	return f(ctx, result)
}

// MultiHost fans a result out to every host in order.
// All hosts are called even if one fails; the failures are joined.
type MultiHost []HostRunner

func (m MultiHost) FinishTrial(ctx context.Context, result domain.TrialResult) error {
	var errs []error
	for _, h := range m {
		if h == nil {
			continue
		}
		if err := h.FinishTrial(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
