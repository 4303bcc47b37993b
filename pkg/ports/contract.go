package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ResultLookup reads back what a HostRunner stored for a trial.
type ResultLookup func(ctx context.Context, trialID string) (domain.TrialResult, error)

// RunHostRunnerContract runs a suite of tests to verify that a storing HostRunner
// implementation keeps the finished-trial payload intact.
func RunHostRunnerContract(t *testing.T, host HostRunner, lookup ResultLookup) {
	ctx := context.Background()
	trialID := "contract-test-trial-" + time.Now().Format("20060102150405")

	t.Run("Finish and Lookup", func(t *testing.T) {
		result := domain.TrialResult{
			TrialID: trialID,
			RT:      1234,
			Response: []domain.ResponseRecord{
				{Name: "q1", Response: "the text talks about rivers and lakes"},
				{Name: "q2", Response: "it explains how water moves around"},
			},
		}

		err := host.FinishTrial(ctx, result)
		require.NoError(t, err, "FinishTrial should not return error")

		loaded, err := lookup(ctx, trialID)
		require.NoError(t, err, "lookup should not return error")
		assert.Equal(t, result.RT, loaded.RT)
		assert.Equal(t, result.Response, loaded.Response, "responses must keep answer order")
	})

	t.Run("Empty Response List", func(t *testing.T) {
		id := trialID + "-empty"
		err := host.FinishTrial(ctx, domain.TrialResult{TrialID: id, RT: 1})
		require.NoError(t, err)

		loaded, err := lookup(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, loaded.Response)
	})

	t.Run("Lookup Unknown", func(t *testing.T) {
		_, err := lookup(ctx, "non-existent-"+trialID)
		assert.ErrorIs(t, err, domain.ErrTrialNotFound)
	})
}
