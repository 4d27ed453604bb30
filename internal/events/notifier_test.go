package events

import (
	"errors"
	"strings"
	"testing"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	n := New()
	var got []string

	n.Subscribe(Created, func(ev Event) error {
		got = append(got, "first:"+ev.PresetID)
		return nil
	})
	n.SubscribeAll(func(ev Event) error {
		got = append(got, "all:"+string(ev.Kind))
		return nil
	})
	n.Subscribe(Deleted, func(ev Event) error {
		got = append(got, "deleted")
		return nil
	})
	n.Subscribe(Created, func(ev Event) error {
		got = append(got, "last:"+ev.PresetID)
		return nil
	})

	n.Publish(Event{Kind: Created, PresetID: "work"})

	want := "first:work,all:created,last:work"
	if strings.Join(got, ",") != want {
		t.Fatalf("delivery order = %v, want %s", got, want)
	}
}

func TestFailingHandlerDoesNotBlockOthers(t *testing.T) {
	var hooked []error
	n := New(WithFailureHook(func(ev Event, err error) {
		hooked = append(hooked, err)
	}))

	delivered := 0
	var reported []Event

	n.Subscribe(Updated, func(ev Event) error { return errors.New("boom") })
	n.Subscribe(Updated, func(ev Event) error { panic("kaboom") })
	n.Subscribe(Updated, func(ev Event) error {
		delivered++
		return nil
	})
	n.Subscribe(Error, func(ev Event) error {
		reported = append(reported, ev)
		return nil
	})

	failures := n.Publish(Event{Kind: Updated, PresetID: "work"})

	if delivered != 1 {
		t.Fatalf("expected healthy handler to run once, ran %d times", delivered)
	}
	if len(failures) != 2 || len(hooked) != 2 {
		t.Fatalf("expected two failures, got %v (hook saw %v)", failures, hooked)
	}
	if len(reported) != 2 || reported[0].PresetID != "work" {
		t.Fatalf("expected failures on the error channel, got %+v", reported)
	}
}

func TestFailingErrorHandlerDoesNotRecurse(t *testing.T) {
	n := New()
	calls := 0
	n.Subscribe(Error, func(ev Event) error {
		calls++
		return errors.New("still broken")
	})

	n.Report(errors.New("original"))

	if calls != 1 {
		t.Fatalf("expected error handler to run once, ran %d times", calls)
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	n := New()
	calls := 0
	sub := n.Subscribe(Created, func(ev Event) error {
		calls++
		return nil
	})
	keep := n.Subscribe(Created, func(ev Event) error { return nil })

	sub.Close()
	sub.Close()

	n.Publish(Event{Kind: Created})

	if calls != 0 {
		t.Fatalf("expected closed subscription to receive nothing, got %d calls", calls)
	}
	if n.Len() != 1 {
		t.Fatalf("expected one live subscription, got %d", n.Len())
	}
	keep.Close()
	if n.Len() != 0 {
		t.Fatalf("expected no live subscriptions, got %d", n.Len())
	}
}

func TestHandlerMayUnsubscribeDuringPublish(t *testing.T) {
	n := New()
	var sub *Subscription
	calls := 0
	sub = n.Subscribe(Created, func(ev Event) error {
		calls++
		sub.Close()
		return nil
	})

	n.Publish(Event{Kind: Created})
	n.Publish(Event{Kind: Created})

	if calls != 1 {
		t.Fatalf("expected handler to run once before unsubscribing, ran %d", calls)
	}
}

func TestPublishStampsTime(t *testing.T) {
	n := New()
	var got Event
	n.SubscribeAll(func(ev Event) error {
		got = ev
		return nil
	})

	n.Publish(Event{Kind: Applied})
	if got.Time.IsZero() {
		t.Fatal("expected Publish to stamp the event time")
	}
}
