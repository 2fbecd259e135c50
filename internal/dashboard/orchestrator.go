// Package dashboard loads and mutates the admin dashboard collections and
// holds the per-domain view state.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultRequestTimeout bounds a single load or mutation call.
const DefaultRequestTimeout = 15 * time.Second

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRequestTimeout bounds every gateway call. d <= 0 disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithStateListener registers fn to receive a snapshot after every state change.
func WithStateListener(fn func(State)) Option {
	return func(o *Orchestrator) { o.listener = fn }
}

// loader fetches one domain and returns a function that stores the result.
type loader func(ctx context.Context) (func(*State), error)

// Orchestrator drives the dashboard. It is safe for concurrent use.
type Orchestrator struct {
	deps     Deps
	guard    SessionGuard
	log      *slog.Logger
	timeout  time.Duration
	listener func(State)
	loaders  map[Domain]loader

	mu    sync.Mutex
	state State
	// seq is the id of the newest load per domain. A finishing load whose id
	// is older leaves the state alone.
	seq [domainCount]uint64
}

// New creates an Orchestrator in the initial state.
func New(deps Deps, guard SessionGuard, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		deps:    deps,
		guard:   guard,
		log:     slog.Default(),
		timeout: DefaultRequestTimeout,
		state:   newState(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.loaders = map[Domain]loader{
		DomainMessages:    o.loadMessages,
		DomainMarketplace: o.loadMarketplace,
		DomainAds:         o.loadAds,
		DomainFAQ:         o.loadFaqs,
		DomainProposals:   o.loadProposals,
	}
	return o
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Init checks the session and loads the dashboard tab. Without a session
// nothing is loaded and ErrNotAuthenticated is returned.
func (o *Orchestrator) Init(ctx context.Context) error {
	if !o.guard.Check() {
		return ErrNotAuthenticated
	}
	return o.SelectTab(ctx, TabDashboard)
}

// SelectTab activates tab and loads each of its domains once. It returns
// after every load has settled.
func (o *Orchestrator) SelectTab(ctx context.Context, tab Tab) error {
	if _, ok := tabDomains[tab]; !ok {
		return errors.New("unknown tab " + tab.String())
	}
	o.update(func(s *State) { s.ActiveTab = tab })
	return o.loadAll(ctx, tab.Domains())
}

// Retry reloads a single domain after a failure.
func (o *Orchestrator) Retry(ctx context.Context, d Domain) error {
	return o.Load(ctx, d)
}

// RetryTab reloads every domain bound to tab.
func (o *Orchestrator) RetryTab(ctx context.Context, tab Tab) error {
	return o.loadAll(ctx, tab.Domains())
}

// Logout ends the session and discards all loaded data.
func (o *Orchestrator) Logout() {
	o.guard.Logout()
	o.mu.Lock()
	o.state = newState()
	for i := range o.seq {
		o.seq[i]++
	}
	snap := o.state.clone()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Orchestrator) loadAll(ctx context.Context, domains []Domain) error {
	errs := make([]error, len(domains))
	var wg sync.WaitGroup
	for i, d := range domains {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = o.Load(ctx, d)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Load fetches d and records the outcome. On success the list is replaced
// and the domain error cleared. An auth failure ends the session and leaves
// the error unset. Any other failure sets "<Label> Error: <message>". A load
// superseded by a newer one for the same domain is dropped and returns nil.
func (o *Orchestrator) Load(ctx context.Context, d Domain) error {
	load, ok := o.loaders[d]
	if !ok {
		return errors.New("unknown domain " + d.String())
	}

	o.mu.Lock()
	o.seq[d]++
	id := o.seq[d]
	o.state.Loading[d] = true
	delete(o.state.Errors, d)
	o.mu.Unlock()

	var (
		apply func(*State)
		err   error
	)
	if _, ok := o.guard.Token(); !ok {
		err = ErrNotAuthenticated
	} else {
		ctx, cancel := o.withTimeout(ctx)
		apply, err = load(ctx)
		cancel()
	}
	return o.settle(d, id, apply, err)
}

func (o *Orchestrator) settle(d Domain, id uint64, apply func(*State), err error) error {
	o.mu.Lock()
	if id != o.seq[d] {
		o.mu.Unlock()
		o.log.Debug("discarding stale load", "domain", d.String(), "error", err)
		return nil
	}
	o.state.Loading[d] = false
	if err == nil {
		apply(&o.state)
		snap := o.state.clone()
		o.mu.Unlock()
		o.notify(snap)
		return nil
	}

	if IsAuthFailure(err) {
		o.mu.Unlock()
		o.log.Warn("session rejected, logging out", "domain", d.String(), "error", err)
		o.Logout()
		return &AuthError{Domain: d, Err: err}
	}

	derr := &DomainError{Domain: d, Err: err}
	o.state.Errors[d] = derr.Error()
	snap := o.state.clone()
	o.mu.Unlock()
	o.log.Error("load failed", "domain", d.String(), "error", err)
	o.notify(snap)
	return derr
}

func (o *Orchestrator) loadMessages(ctx context.Context) (func(*State), error) {
	items, err := o.deps.Messages.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	items = nonNil(items)
	return func(s *State) { s.Messages = items }, nil
}

func (o *Orchestrator) loadMarketplace(ctx context.Context) (func(*State), error) {
	items, err := o.deps.Marketplace.ListMarketplaceItems(ctx)
	if err != nil {
		return nil, err
	}
	items = nonNil(items)
	return func(s *State) { s.MarketplaceItems = items }, nil
}

func (o *Orchestrator) loadAds(ctx context.Context) (func(*State), error) {
	items, err := o.deps.Ads.ListAds(ctx)
	if err != nil {
		return nil, err
	}
	items = nonNil(items)
	return func(s *State) { s.Ads = items }, nil
}

func (o *Orchestrator) loadFaqs(context.Context) (func(*State), error) {
	items, err := o.deps.Faqs.List()
	if err != nil {
		return nil, err
	}
	items = nonNil(items)
	return func(s *State) { s.Faqs = items }, nil
}

func (o *Orchestrator) loadProposals(context.Context) (func(*State), error) {
	items, err := o.deps.Proposals.List()
	if err != nil {
		return nil, err
	}
	items = nonNil(items)
	return func(s *State) { s.Proposals = items }, nil
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

// update applies fn under the lock and notifies the listener.
func (o *Orchestrator) update(fn func(*State)) {
	o.mu.Lock()
	fn(&o.state)
	snap := o.state.clone()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Orchestrator) notify(s State) {
	if o.listener != nil {
		o.listener(s)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
