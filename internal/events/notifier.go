// Package events delivers preset lifecycle notifications to in-process
// subscribers.
package events

import (
	"fmt"
	"sync"
	"time"
)

// Kind names a preset lifecycle event.
type Kind string

const (
	Created              Kind = "created"
	Updated              Kind = "updated"
	Deleted              Kind = "deleted"
	Applied              Kind = "applied"
	IDChanged            Kind = "idChanged"
	ImportedBatch        Kind = "importedBatch"
	FolderMappingChanged Kind = "folderMappingChanged"
	FolderMappingRemoved Kind = "folderMappingRemoved"
	TagMappingChanged    Kind = "tagMappingChanged"
	TagMappingRemoved    Kind = "tagMappingRemoved"
	GlobalDefaultChanged Kind = "globalDefaultChanged"
	GlobalDefaultCleared Kind = "globalDefaultCleared"
	PolicyChanged        Kind = "policyChanged"
	Reloaded             Kind = "reloaded"
	Error                Kind = "error"
)

// Kinds lists every event kind.
var Kinds = []Kind{
	Created, Updated, Deleted, Applied, IDChanged, ImportedBatch,
	FolderMappingChanged, FolderMappingRemoved, TagMappingChanged, TagMappingRemoved,
	GlobalDefaultChanged, GlobalDefaultCleared, PolicyChanged, Reloaded, Error,
}

// Event describes one change. Key holds the folder or tag for mapping events;
// IDs holds the preset ids of a batch.
type Event struct {
	Kind     Kind
	PresetID string
	OldID    string
	Key      string
	IDs      []string
	Err      error
	Time     time.Time
}

func (e Event) String() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.OldID != "":
		return fmt.Sprintf("%s %s -> %s", e.Kind, e.OldID, e.PresetID)
	case e.Key != "":
		return fmt.Sprintf("%s %s -> %s", e.Kind, e.Key, e.PresetID)
	case len(e.IDs) > 0:
		return fmt.Sprintf("%s %v", e.Kind, e.IDs)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.PresetID)
}

// Handler receives events. A returned error is reported and does not stop
// delivery to other subscribers.
type Handler func(Event) error

// FailureHook is told about every handler that fails.
type FailureHook func(ev Event, err error)

type subscriber struct {
	id   uint64
	kind Kind
	all  bool
	fn   Handler
}

// Notifier is a typed publish/subscribe registry. Delivery order is
// subscription order.
type Notifier struct {
	mu     sync.Mutex
	next   uint64
	subs   []subscriber
	onFail FailureHook
	now    func() time.Time
}

type Option func(*Notifier)

// WithFailureHook registers fn to be called when a handler fails.
func WithFailureHook(fn FailureHook) Option {
	return func(n *Notifier) {
		n.onFail = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

func New(opts ...Option) *Notifier {
	n := &Notifier{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers fn for one event kind. Close the returned subscription
// to stop receiving events.
func (n *Notifier) Subscribe(kind Kind, fn Handler) *Subscription {
	return n.add(subscriber{kind: kind, fn: fn})
}

// SubscribeAll registers fn for every event kind.
func (n *Notifier) SubscribeAll(fn Handler) *Subscription {
	return n.add(subscriber{all: true, fn: fn})
}

func (n *Notifier) add(s subscriber) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.next++
	s.id = n.next
	n.subs = append(n.subs, s)
	return &Subscription{n: n, id: s.id}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of live subscriptions.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Publish delivers ev to every matching subscriber and returns the failures.
// Failed handlers are also reported to subscribers of the Error kind.
func (n *Notifier) Publish(ev Event) []error {
	if n == nil {
		return nil
	}
	if ev.Time.IsZero() {
		ev.Time = n.now()
	}

	failures := n.deliver(ev)
	if ev.Kind == Error {
		return failures
	}
	for _, err := range failures {
		n.deliver(Event{Kind: Error, PresetID: ev.PresetID, Key: ev.Key, Err: err, Time: ev.Time})
	}
	return failures
}

// Report publishes err on the Error kind.
func (n *Notifier) Report(err error) {
	if err == nil {
		return
	}
	n.Publish(Event{Kind: Error, Err: err})
}

func (n *Notifier) deliver(ev Event) []error {
	n.mu.Lock()
	targets := make([]subscriber, 0, len(n.subs))
	for _, s := range n.subs {
		if s.all || s.kind == ev.Kind {
			targets = append(targets, s)
		}
	}
	n.mu.Unlock()

	var failures []error
	for _, s := range targets {
		if err := call(s.fn, ev); err != nil {
			failures = append(failures, err)
			if n.onFail != nil {
				n.onFail(ev, err)
			}
		}
	}
	return failures
}

func call(fn Handler, ev Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s handler panicked: %v", ev.Kind, rec)
		}
	}()
	if err := fn(ev); err != nil {
		return fmt.Errorf("%s handler: %w", ev.Kind, err)
	}
	return nil
}

// Subscription is the disposer returned by Subscribe.
type Subscription struct {
	n    *Notifier
	id   uint64
	once sync.Once
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.n.remove(s.id)
	})
}
