// Package interpret implements the Interpret strategy: every Get and Set walks the field's
// plan through the accessor engine.
package interpret

import (
	"github.com/bearlytools/bitlayout/accessor"
	"github.com/bearlytools/bitlayout/backend"
	"github.com/bearlytools/bitlayout/plan"
	"github.com/gostdlib/base/context"
)

func init() {
	backend.Register(backend.Interpret, Builder{})
}

// Builder implements backend.Builder.
type Builder struct{}

// Build implements backend.Builder.Build().
func (Builder) Build(ctx context.Context, plans []plan.Plan) (backend.Program, error) {
	return &Program{plans: plans}, nil
}

// Program implements backend.Program.
type Program struct {
	plans []plan.Plan
}

func (p *Program) Strategy() backend.Strategy {
	return backend.Interpret
}

func (p *Program) Len() int {
	return len(p.plans)
}

func (p *Program) Name(i int) string {
	return p.plans[i].Name
}

func (p *Program) Get(buf []byte, i int) uint64 {
	return accessor.Load(buf, &p.plans[i])
}

func (p *Program) Set(buf []byte, i int, v uint64) {
	accessor.Store(buf, &p.plans[i], v)
}
