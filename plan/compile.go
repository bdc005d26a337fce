package plan

import (
	"fmt"

	"github.com/bearlytools/bitlayout/errors"
	"github.com/bearlytools/bitlayout/layout"
	"github.com/gostdlib/base/context"
	"go.uber.org/zap"
)

type options struct {
	storage    layout.Storage
	hasStorage bool
	order      layout.Order
}

// Option is an optional argument to Compile.
type Option func(o *options) error

// WithStorage binds the layout to storage instead of the storage it declares. A word layout
// can be viewed over a byte buffer holding its byte image, and a buffer layout can be
// packed into a word it fits in.
func WithStorage(s layout.Storage) Option {
	return func(o *options) error {
		o.storage = s
		o.hasStorage = true
		return nil
	}
}

// WithOrder sets the order the layout inherits, in place of layout.Default. The order
// must be complete.
func WithOrder(order layout.Order) Option {
	return func(o *options) error {
		if !order.Complete() {
			return fmt.Errorf("WithOrder(%s): both byte order and bit order must be set", order)
		}
		o.order = order
		return nil
	}
}

type cacheKey struct {
	l     *layout.Layout
	order layout.Order
	base  uint32
}

type compiler struct {
	storage layout.Storage
	cache   map[cacheKey]*Set
	hits    int
}

// Compile validates l and builds the access plans for every field, nested layout and run
// of undefined bits. Nothing is built for a layout with any error; the returned error joins
// every *layout.Error found.
func Compile(ctx context.Context, l *layout.Layout, opts ...Option) (*Set, error) {
	if l == nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, errors.New("Compile: nil layout"))
	}

	cfg := options{order: layout.Default}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, err)
		}
	}
	if !cfg.hasStorage {
		cfg.storage = l.Storage
	}

	if errs := layout.ValidateFor(l, cfg.storage, cfg.order); len(errs) > 0 {
		joined := make([]error, 0, len(errs))
		for _, e := range errs {
			joined = append(joined, e)
		}
		return nil, errors.E(ctx, errors.CatUser, errors.TypeLayout, errors.Join(joined...))
	}

	c := &compiler{storage: cfg.storage, cache: map[cacheKey]*Set{}}
	s := c.compile(l, l.Effective(cfg.order), 0, true)

	log := Logger()
	if ce := log.Check(zap.DebugLevel, "compiled layout"); ce != nil {
		ce.Write(
			zap.String("layout", l.Name),
			zap.Stringer("storage", cfg.storage),
			zap.Stringer("order", s.Order),
			zap.Uint32("bits", s.Bits),
			zap.Int("fields", s.Len()),
			zap.Int("gaps", len(s.Gaps)),
			zap.Int("sets", len(c.cache)),
			zap.Int("cacheHits", c.hits),
		)
		for _, line := range s.Describe() {
			log.Debug("plan", zap.String("layout", l.Name), zap.String("field", line))
		}
	}
	return s, nil
}

// MustCompile is like Compile but panics on error. It is meant for package level layouts.
func MustCompile(l *layout.Layout, opts ...Option) *Set {
	s, err := Compile(context.Background(), l, opts...)
	if err != nil {
		panic(err)
	}
	return s
}
