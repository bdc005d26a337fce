// Package backend turns a compiled buffer layout into a Program that gets and sets fields by
// flat index. It also sets up the registry of strategies that build Programs; the strategies
// live in other packages and register themselves when imported.
package backend

import (
	"fmt"

	"github.com/bearlytools/bitlayout/errors"
	"github.com/bearlytools/bitlayout/field"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/gostdlib/base/context"
	"go.uber.org/zap"
)

//go:generate stringer -type=Strategy -linecomment

// Strategy is a way of executing access plans.
type Strategy uint8

const (
	Unknown Strategy = 0 // unknown
	// Interpret walks each plan on every call.
	Interpret Strategy = 1 // interpret
	// Generate folds each plan's constants into specialized functions when it is built.
	Generate Strategy = 2 // generate
)

// Program gets and sets the scalar fields of a layout in a byte image. Fields are numbered
// as plan.Set.Flatten numbers them.
type Program interface {
	Strategy() Strategy
	Len() int
	Name(i int) string
	Get(buf []byte, i int) uint64
	Set(buf []byte, i int, v uint64)
}

// Builder builds Programs for one strategy.
type Builder interface {
	Build(ctx context.Context, plans []plan.Plan) (Program, error)
}

// Supported is the strategies that have registered a Builder.
var Supported = map[Strategy]Builder{}

// Register registers b for s. It is meant to be called from init and panics if s already
// has a Builder.
func Register(s Strategy, b Builder) {
	if _, ok := Supported[s]; ok {
		panic(fmt.Sprintf("someone already registered the %s strategy", s))
	}
	Supported[s] = b
}

// Build builds a Program for set with strategy s. set must be compiled for buffer storage.
func Build(ctx context.Context, s Strategy, set *plan.Set) (Program, error) {
	if set == nil {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, errors.New("Build: nil plan.Set"))
	}
	if set.Storage.Kind != field.Buffer {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("Build: layout %q is compiled for %s storage, programs run over byte buffers", set.Name(), set.Storage))
	}
	b, ok := Supported[s]
	if !ok {
		return nil, errors.E(ctx, errors.CatUser, errors.TypeParameter, fmt.Errorf("Build: strategy %s is not supported", s))
	}

	p, err := b.Build(ctx, set.Flatten())
	if err != nil {
		return nil, errors.E(ctx, errors.CatInternal, errors.TypeBug, err)
	}
	plan.Logger().Debug("built program", zap.String("layout", set.Name()), zap.Stringer("strategy", s), zap.Int("fields", p.Len()))
	return p, nil
}
