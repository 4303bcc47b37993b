package ports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/aretw0/summarize/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMultiHost_CallsEveryHost(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	host := ports.MultiHost{
		ports.HostFunc(func(ctx context.Context, r domain.TrialResult) error {
			calls = append(calls, "first")
			return boom
		}),
		nil,
		ports.HostFunc(func(ctx context.Context, r domain.TrialResult) error {
			calls = append(calls, "second")
			return nil
		}),
	}

	err := host.FinishTrial(context.Background(), domain.TrialResult{RT: 10})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestMultiHost_Empty(t *testing.T) {
	assert.NoError(t, ports.MultiHost{}.FinishTrial(context.Background(), domain.TrialResult{}))
}
