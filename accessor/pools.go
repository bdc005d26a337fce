package accessor

import (
	"github.com/bearlytools/bitlayout/layout"
	"github.com/gostdlib/base/concurrency/sync"
	"github.com/gostdlib/base/context"
)

// Scratch space for snapshots taken when a nested layout is re-encoded. A layout at a bit
// offset can need one byte more than MaxBits/8.
var scratchBytes = sync.NewPool[*[]byte](
	context.Background(),
	"scratchBytes",
	func() *[]byte {
		b := make([]byte, layout.MaxBits/8+1)
		return &b
	},
	sync.WithBuffer(16),
)

var scratchWords = sync.NewPool[*[]uint64](
	context.Background(),
	"scratchWords",
	func() *[]uint64 {
		w := make([]uint64, layout.MaxBits/64+1)
		return &w
	},
	sync.WithBuffer(16),
)
