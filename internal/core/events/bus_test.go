package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/rbac-admin/internal/core/events"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("Bus", func() {
	var bus *events.Bus

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewBus(logger)
	})

	It("delivers to handlers subscribed to the action", func() {
		received := make(chan events.Event, 1)
		bus.Subscribe(events.ActionUserCreated, func(ctx context.Context, e events.Event) error {
			received <- e
			return nil
		})

		evt := events.NewEvent(events.ActionUserCreated, events.ResourceUser, 7, "Alice")
		bus.Publish(context.Background(), evt)

		var got events.Event
		Eventually(received).Should(Receive(&got))
		Expect(got.Action).To(Equal(events.ActionUserCreated))
		Expect(got.ResourceID).To(Equal(int64(7)))
		Expect(got.Name).To(Equal("Alice"))
		Expect(got.ID).NotTo(BeEmpty())
	})

	It("delivers every action to a wildcard subscriber", func() {
		received := make(chan string, 2)
		bus.Subscribe(events.SubscribeAll, func(ctx context.Context, e events.Event) error {
			received <- e.Action
			return nil
		})

		bus.Publish(context.Background(), events.NewEvent(events.ActionRoleCreated, events.ResourceRole, 1, "editor"))
		bus.Publish(context.Background(), events.NewEvent(events.ActionRoleDeleted, events.ResourceRole, 1, "editor"))

		Eventually(received).Should(Receive(Equal(events.ActionRoleCreated)))
		Eventually(received).Should(Receive(Equal(events.ActionRoleDeleted)))
	})

	It("does not deliver to handlers for other actions", func() {
		called := false
		bus.Subscribe(events.ActionUserDeleted, func(ctx context.Context, e events.Event) error {
			called = true
			return nil
		})

		err := bus.PublishSync(context.Background(), events.NewEvent(events.ActionUserCreated, events.ResourceUser, 7, "Alice"))
		Expect(err).NotTo(HaveOccurred())
		Expect(called).To(BeFalse())
	})

	It("returns the first handler failure from PublishSync", func() {
		boom := errors.New("boom")
		bus.Subscribe(events.ActionUserCreated, func(ctx context.Context, e events.Event) error {
			return boom
		})

		err := bus.PublishSync(context.Background(), events.NewEvent(events.ActionUserCreated, events.ResourceUser, 7, "Alice"))
		Expect(err).To(MatchError(boom))
	})
})
