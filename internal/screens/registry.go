package screens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/vacina-dashboard/internal/listing"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

// Binding is a screen controller seen through a type-erased view, so the
// HTTP layer can drive every screen the same way.
type Binding interface {
	Name() string
	Elevated() bool
	// Restricted screens exist only for elevated sessions.
	Restricted() bool
	Ensure(ctx context.Context) error
	Reload(ctx context.Context) error
	View() interface{}
	Filter() listing.Filter
	ApplyFilter(f listing.Filter) interface{}
	ClearFilter() interface{}
	GoTo(n int) (interface{}, bool)
	Next() (interface{}, bool)
	Prev() (interface{}, bool)
	Find(key string) (interface{}, bool)
	Remove(key string) bool
	// Input applies f after the debounce delay and publishes the new view.
	Input(f listing.Filter)
	Subscribe() (<-chan interface{}, func())
}

type binding[T model.Record] struct {
	ctl      *listing.Controller[T]
	debounce *listing.Debouncer
	hub      *listing.Hub[interface{}]
}

func bind[T model.Record](ctl *listing.Controller[T], delay time.Duration) *binding[T] {
	return &binding[T]{ctl: ctl, debounce: listing.NewDebouncer(delay), hub: listing.NewHub[interface{}]()}
}

func (b *binding[T]) Name() string                     { return b.ctl.Screen().Name }
func (b *binding[T]) Elevated() bool                   { return b.ctl.Elevated() }
func (b *binding[T]) Restricted() bool                 { return b.ctl.Screen().Elevated }
func (b *binding[T]) Ensure(ctx context.Context) error { return b.ctl.Ensure(ctx) }
func (b *binding[T]) Reload(ctx context.Context) error { return b.ctl.Reload(ctx) }
func (b *binding[T]) View() interface{}                { return b.ctl.View() }
func (b *binding[T]) Filter() listing.Filter           { return b.ctl.Filter() }
func (b *binding[T]) ClearFilter() interface{}         { return b.ctl.ClearFilter() }
func (b *binding[T]) Remove(key string) bool           { return b.ctl.Remove(key) }

func (b *binding[T]) ApplyFilter(f listing.Filter) interface{} {
	return b.ctl.ApplyFilter(f)
}

func (b *binding[T]) GoTo(n int) (interface{}, bool) {
	v, ok := b.ctl.GoTo(n)
	return v, ok
}

func (b *binding[T]) Next() (interface{}, bool) {
	v, ok := b.ctl.Next()
	return v, ok
}

func (b *binding[T]) Prev() (interface{}, bool) {
	v, ok := b.ctl.Prev()
	return v, ok
}

func (b *binding[T]) Find(key string) (interface{}, bool) {
	rec, ok := b.ctl.Find(key)
	return rec, ok
}

func (b *binding[T]) Input(f listing.Filter) {
	b.debounce.Trigger(func() {
		b.hub.Publish(b.ctl.ApplyFilter(f))
	})
}

func (b *binding[T]) Subscribe() (<-chan interface{}, func()) {
	return b.hub.Subscribe(4)
}

func (b *binding[T]) stop() { b.debounce.Stop() }

// Loaders fetch each screen's records on behalf of a session.
type Loaders struct {
	Patients func(ctx context.Context, s *session.Session) ([]model.Patient, error)
	Vaccines func(ctx context.Context, s *session.Session) ([]model.Vaccine, error)
	Users    func(ctx context.Context, s *session.Session) ([]model.User, error)
	History  func(ctx context.Context, s *session.Session) ([]model.Vaccination, error)
}

// Set holds the controllers of one session. The session is refreshed on
// every lookup so loaders always use the latest token.
type Set struct {
	mu       sync.RWMutex
	sess     *session.Session
	bindings map[string]Binding
}

func (s *Set) session() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

func (s *Set) refresh(sess *session.Session) {
	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
}

func (s *Set) stop() {
	for _, b := range s.bindings {
		if st, ok := b.(interface{ stop() }); ok {
			st.stop()
		}
	}
}

type Config struct {
	TTL      time.Duration
	Debounce time.Duration
	Now      func() time.Time
}

// Registry keeps a Set per session, evicting idle ones after the TTL.
type Registry struct {
	mu      sync.Mutex
	cache   *cache.Cache
	loaders Loaders
	cfg     Config
}

func NewRegistry(cfg Config, loaders Loaders) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	c := cache.New(cfg.TTL, cfg.TTL/2)
	c.OnEvicted(func(_ string, v interface{}) {
		if set, ok := v.(*Set); ok {
			set.stop()
		}
	})
	return &Registry{cache: c, loaders: loaders, cfg: cfg}
}

func setKey(s *session.Session) string {
	return s.Key() + "|" + s.Claims.Role
}

// Set returns the controllers of sess, creating them on first use.
func (r *Registry) Set(sess *session.Session) *Set {
	key := setKey(sess)

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache.Get(key); ok {
		set := v.(*Set)
		set.refresh(sess)
		r.cache.Set(key, set, cache.DefaultExpiration)
		return set
	}

	set := &Set{sess: sess}
	elevated := sess.Elevated()
	set.bindings = map[string]Binding{
		NamePatients: bind(listing.New(Patients(), elevated, load(set, r.loaders.Patients)), r.cfg.Debounce),
		NameVaccines: bind(listing.New(Vaccines(r.cfg.Now), elevated, load(set, r.loaders.Vaccines)), r.cfg.Debounce),
		NameUsers:    bind(listing.New(Users(), elevated, load(set, r.loaders.Users)), r.cfg.Debounce),
		NameHistory:  bind(listing.New(History(), elevated, load(set, r.loaders.History)), r.cfg.Debounce),
	}
	r.cache.Set(key, set, cache.DefaultExpiration)
	return set
}

// Screen returns the named screen of sess. Elevated screens are refused to
// other sessions.
func (r *Registry) Screen(sess *session.Session, name string) (Binding, error) {
	b, ok := r.Set(sess).bindings[name]
	if !ok {
		return nil, apperrors.NotFound("Tela não encontrada", fmt.Errorf("unknown screen %q", name))
	}
	if b.Restricted() && !sess.Elevated() {
		return nil, apperrors.Forbidden(fmt.Errorf("screen %s requires an elevated session", name))
	}
	return b, nil
}

// Forget drops the controllers of sess, e.g. after logout.
func (r *Registry) Forget(sess *session.Session) {
	r.cache.Delete(setKey(sess))
}

func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

func load[T any](set *Set, fn func(context.Context, *session.Session) ([]T, error)) listing.Loader[T] {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context) ([]T, error) {
		return fn(ctx, set.session())
	}
}
