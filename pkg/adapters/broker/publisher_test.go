package broker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/aretw0/summarize/pkg/adapters/broker"
	"github.com/aretw0/summarize/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_FinishTrial(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, broker.DefaultTopic)
	require.NoError(t, err)

	pub := broker.New(pubSub, "", nil)
	assert.Equal(t, broker.DefaultTopic, pub.Topic())

	result := domain.TrialResult{
		TrialID:  "t1",
		RT:       1500,
		Response: []domain.ResponseRecord{{Name: "q1", Response: "the summary of the text"}},
	}
	require.NoError(t, pub.FinishTrial(ctx, result))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, broker.EventType, msg.Metadata.Get("event_type"))
		assert.Equal(t, "t1", msg.Metadata.Get("trial_id"))
		assert.NotEmpty(t, msg.Metadata.Get("timestamp"))

		var got domain.TrialResult
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, result, got)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                             { return nil }

func TestPublisher_Error(t *testing.T) {
	pub := broker.New(failingPublisher{}, "results", nil)
	err := pub.FinishTrial(context.Background(), domain.TrialResult{TrialID: "t1"})
	assert.ErrorContains(t, err, "broker down")
}
