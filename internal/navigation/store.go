package navigation

import (
	"context"
	"fmt"
	"sync"

	"inserview.studio/web/internal/routing"
)

// Repository persists one Location per visitor.
type Repository interface {
	// Load returns the visitor's location, or a zero Location when none is stored.
	Load(ctx context.Context, visitor string) (Location, error)
	Save(ctx context.Context, visitor string, loc Location) error
}

// Transition describes one applied intent, for observers.
type Transition struct {
	Visitor string
	Intent  Intent
	Before  Location
	After   Location
	// Mounted is true when the transition was the deferred scroll of a
	// destination render rather than a new intent.
	Mounted bool
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithObserver registers fn to be called after every transition, while the
// visitor's lock is still held.
func WithObserver(fn func(Transition)) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// Store is the single writer of visitor locations. Intents for one visitor
// are applied strictly one at a time in arrival order; different visitors
// proceed independently.
type Store struct {
	ctrl      *Controller
	repo      Repository
	observers []func(Transition)

	mu    sync.Mutex
	locks map[string]*visitorLock
}

type visitorLock struct {
	mu   sync.Mutex
	refs int
}

// NewStore builds a Store over ctrl and repo.
func NewStore(ctrl *Controller, repo Repository, opts ...StoreOption) *Store {
	if repo == nil {
		repo = NewMemoryRepository(0)
	}
	s := &Store{
		ctrl:  ctrl,
		repo:  repo,
		locks: map[string]*visitorLock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Controller returns the underlying controller.
func (s *Store) Controller() *Controller { return s.ctrl }

// Snapshot returns the visitor's current location.
func (s *Store) Snapshot(ctx context.Context, visitor string) (Location, error) {
	loc, err := s.repo.Load(ctx, visitor)
	if err != nil {
		return Location{}, fmt.Errorf("navigation: load %s: %w", visitor, err)
	}
	return loc.clone(), nil
}

// Dispatch applies in to the visitor's location.
func (s *Store) Dispatch(ctx context.Context, visitor string, in Intent, vp Viewport) (Location, error) {
	return s.update(ctx, visitor, func(cur Location) (Location, Transition) {
		next := s.ctrl.HandleIntent(in, cur, vp)
		return next, Transition{Intent: in}
	})
}

// Visit handles a page request for rawPath. When the visitor's location
// already points at that path the request is the render of an earlier
// transition, so any pending anchor fires; otherwise the request is an
// externally sourced PathChange (typed URL, history navigation).
func (s *Store) Visit(ctx context.Context, visitor, rawPath string, vp Viewport) (Location, error) {
	path := routing.Canonical(rawPath)
	return s.update(ctx, visitor, func(cur Location) (Location, Transition) {
		if !cur.IsZero() && cur.Path == path {
			next := s.ctrl.Mounted(cur, cur.Page, vp)
			return next, Transition{Intent: Path(path), Mounted: true}
		}
		in := Path(path)
		next := s.ctrl.HandleIntent(in, cur, vp)
		return next, Transition{Intent: in}
	})
}

// Sync records that the visitor's client is showing rawPath. A mismatch is
// treated as an external PathChange, which discards any pending anchor.
func (s *Store) Sync(ctx context.Context, visitor, rawPath string) (Location, error) {
	path := routing.Canonical(rawPath)
	return s.update(ctx, visitor, func(cur Location) (Location, Transition) {
		if !cur.IsZero() && cur.Path == path {
			return cur, Transition{}
		}
		in := Path(path)
		return s.ctrl.HandleIntent(in, cur, nil), Transition{Intent: in}
	})
}

func (s *Store) update(ctx context.Context, visitor string, apply func(Location) (Location, Transition)) (Location, error) {
	unlock := s.lock(visitor)
	defer unlock()

	cur, err := s.repo.Load(ctx, visitor)
	if err != nil {
		return Location{}, fmt.Errorf("navigation: load %s: %w", visitor, err)
	}
	next, tr := apply(cur.clone())
	if tr.Intent.Kind == 0 && !tr.Mounted {
		return next, nil
	}
	if err := s.repo.Save(ctx, visitor, next); err != nil {
		return Location{}, fmt.Errorf("navigation: save %s: %w", visitor, err)
	}
	tr.Visitor = visitor
	tr.Before = cur
	tr.After = next
	for _, fn := range s.observers {
		fn(tr)
	}
	return next.clone(), nil
}

func (s *Store) lock(visitor string) func() {
	s.mu.Lock()
	l, ok := s.locks[visitor]
	if !ok {
		l = &visitorLock{}
		s.locks[visitor] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, visitor)
		}
		s.mu.Unlock()
	}
}
