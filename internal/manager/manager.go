// Package manager composes the preset store, the folder and tag indices and
// the resolver behind one lock, persisting every mutation.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Paintersrp/an-presets/internal/assign"
	"github.com/Paintersrp/an-presets/internal/cache"
	"github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/preset"
	"github.com/Paintersrp/an-presets/internal/resolve"
	"github.com/Paintersrp/an-presets/internal/storage"
)

const defaultCacheSize = 256

// Manager is the single owner of presets, assignments and the policy.
type Manager struct {
	mu       sync.RWMutex
	store    *preset.Store
	folders  *assign.FolderIndex
	tags     *assign.TagIndex
	policy   resolve.Policy
	resolver resolve.Resolver

	gw       storage.Gateway
	saveMu   sync.Mutex
	rev      uint64
	savedRev uint64

	notifier *events.Notifier
	logger   *slog.Logger
	results  *cache.LRUCache[uint64, resolve.Result]

	now              func() time.Time
	newID            func() string
	tagCaseSensitive bool
	cacheSize        int
	strict           bool
}

type Option func(*Manager)

func WithNotifier(n *events.Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDGenerator sets how ids of new presets are generated.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}

func WithTagCaseSensitive(caseSensitive bool) Option {
	return func(m *Manager) {
		m.tagCaseSensitive = caseSensitive
	}
}

// WithCacheSize bounds the number of memoised resolutions. Zero disables the
// cache.
func WithCacheSize(size int) Option {
	return func(m *Manager) {
		m.cacheSize = size
	}
}

// WithMergeFunc replaces the field merge used by the merge-custom policy.
func WithMergeFunc(fn resolve.MergeFunc) Option {
	return func(m *Manager) {
		m.resolver.Merge = fn
	}
}

// WithStrictLoad makes Load reject documents with dangling references
// instead of pruning them.
func WithStrictLoad() Option {
	return func(m *Manager) {
		m.strict = true
	}
}

// New returns a manager holding only the bootstrap preset. Call Load to read
// the persisted document. A nil gateway keeps everything in memory.
func New(gw storage.Gateway, opts ...Option) *Manager {
	m := &Manager{
		gw:        gw,
		now:       time.Now,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.notifier == nil {
		m.notifier = events.New(events.WithClock(m.now))
	}
	m.results = cache.NewLRUCache[uint64, resolve.Result](m.cacheSize)

	st := m.newState()
	st.store.Bootstrap()
	m.install(st)
	return m
}

func (m *Manager) storeOpts() []preset.StoreOption {
	opts := []preset.StoreOption{preset.WithClock(m.now)}
	if m.newID != nil {
		opts = append(opts, preset.WithIDGenerator(m.newID))
	}
	return opts
}

func (m *Manager) install(st state) {
	m.store = st.store
	m.folders = st.folders
	m.tags = st.tags
	m.policy = st.policy
	m.results.Purge()
}

func (m *Manager) coordinator() coordinator {
	return coordinator{store: m.store, folders: m.folders, tags: m.tags}
}

// Notifier returns the notifier events are published on.
func (m *Manager) Notifier() *events.Notifier {
	return m.notifier
}

func (m *Manager) Subscribe(kind events.Kind, fn events.Handler) *events.Subscription {
	return m.notifier.Subscribe(kind, fn)
}

func (m *Manager) SubscribeAll(fn events.Handler) *events.Subscription {
	return m.notifier.SubscribeAll(fn)
}

// TagCaseSensitive reports whether tag keys keep their case.
func (m *Manager) TagCaseSensitive() bool {
	return m.tagCaseSensitive
}

// Load replaces the in-memory state with the persisted document. A missing
// document bootstraps a fresh store. A document that cannot be decoded is
// reported on the error channel and replaced by a bootstrapped store; Load
// only fails when the gateway itself fails.
func (m *Manager) Load(ctx context.Context) error {
	if m.gw == nil {
		return nil
	}

	data, err := m.gw.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotExist):
		m.logger.Debug("no preset document found, bootstrapping", "storage", storage.Describe(m.gw))
		m.reset()
		return nil
	case err != nil:
		return fmt.Errorf("load presets from %s: %w", storage.Describe(m.gw), err)
	}

	st, err := m.decode(data)
	if err != nil {
		loadErr := &preset.Error{Op: "load", Err: err}
		m.logger.Error("preset document is invalid, starting from defaults",
			"storage", storage.Describe(m.gw), "err", err)
		m.reset()
		m.notifier.Report(loadErr)
		return nil
	}

	st.store.Bootstrap()

	m.mu.Lock()
	m.install(st)
	m.mu.Unlock()
	return nil
}

func (m *Manager) decode(data []byte) (state, error) {
	doc, dangling, err := decodeDocument(data, m.strict)
	if err != nil {
		return state{}, err
	}
	for _, ref := range dangling {
		m.logger.Warn("dropping reference to missing preset", "ref", ref)
	}
	return m.buildState(doc)
}

func (m *Manager) reset() {
	st := m.newState()
	st.store.Bootstrap()

	m.mu.Lock()
	m.install(st)
	m.mu.Unlock()
}

// Save writes the current state through the gateway.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	m.rev++
	rev := m.rev
	data, err := encodeDocument(m.snapshotLocked())
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.persist(ctx, rev, data)
}

// Snapshot returns the document Save would write.
func (m *Manager) Snapshot() Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// persist saves data unless a newer revision has already been written.
func (m *Manager) persist(ctx context.Context, rev uint64, data []byte) error {
	if m.gw == nil {
		return nil
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	if rev <= m.savedRev {
		return nil
	}
	if err := m.gw.Save(ctx, data); err != nil {
		return err
	}
	m.savedRev = rev
	return nil
}

// mutate runs fn under the write lock, then persists the new state and
// publishes the returned events once the lock is released. A fn returning
// no events and no error changed nothing.
func (m *Manager) mutate(ctx context.Context, op string, fn func() ([]events.Event, error)) error {
	m.mu.Lock()
	evs, err := fn()
	if err != nil || len(evs) == 0 {
		m.mu.Unlock()
		return err
	}
	m.results.Purge()
	m.rev++
	rev := m.rev
	data, encErr := encodeDocument(m.snapshotLocked())
	m.mu.Unlock()

	saveErr := encErr
	if saveErr == nil {
		saveErr = m.persist(ctx, rev, data)
	}

	now := m.now()
	for _, ev := range evs {
		ev.Time = now
		m.notifier.Publish(ev)
	}

	if saveErr != nil {
		err := fmt.Errorf("%s: save presets: %w", op, saveErr)
		m.logger.Error("failed to save presets", "op", op, "err", saveErr)
		m.notifier.Report(err)
		return err
	}
	return nil
}
