// api/util/event_bus_test.go
package util_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dev-mohitbeniwal/arbiter/api/util"
)

func TestEventBus(t *testing.T) {
	ctx := context.Background()

	t.Run("SubscriberReceivesPublishedEvent", func(t *testing.T) {
		bus := util.NewEventBus()

		received := make(chan util.Event, 1)
		bus.Subscribe(util.EventRulesReloaded, func(ctx context.Context, event util.Event) error {
			received <- event
			return nil
		})

		bus.Publish(ctx, util.EventRulesReloaded, int64(7))

		select {
		case event := <-received:
			assert.Equal(t, util.EventRulesReloaded, event.Type)
			assert.Equal(t, int64(7), event.Payload)
		case <-time.After(time.Second):
			t.Fatal("event never reached the subscriber")
		}
	})

	t.Run("AllSubscribersReceiveTheEvent", func(t *testing.T) {
		bus := util.NewEventBus()

		received := make(chan struct{}, 2)
		handler := func(ctx context.Context, event util.Event) error {
			received <- struct{}{}
			return nil
		}
		bus.Subscribe(util.EventActionExecuted, handler)
		bus.Subscribe(util.EventActionExecuted, handler)

		bus.Publish(ctx, util.EventActionExecuted, nil)

		for i := 0; i < 2; i++ {
			select {
			case <-received:
			case <-time.After(time.Second):
				t.Fatal("not every subscriber received the event")
			}
		}
	})

	t.Run("PublishWithoutSubscribersIsANoop", func(t *testing.T) {
		bus := util.NewEventBus()
		bus.Publish(ctx, util.EventDecisionEvaluated, nil)
	})

	t.Run("OtherTopicsAreNotDelivered", func(t *testing.T) {
		bus := util.NewEventBus()

		received := make(chan struct{}, 1)
		bus.Subscribe(util.EventOversightFlagged, func(ctx context.Context, event util.Event) error {
			received <- struct{}{}
			return nil
		})

		bus.Publish(ctx, util.EventDecisionEvaluated, nil)

		select {
		case <-received:
			t.Fatal("subscriber received an event for a topic it never subscribed to")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
