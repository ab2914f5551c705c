package locate

import (
	"sync"

	"github.com/arthur-debert/gamelink/pkg/types"
)

// Index memoizes Locate results for one run. Each item is resolved at most
// once; later lookups return the stored slot.
type Index struct {
	locator *Locator

	mu   sync.Mutex
	byID map[string]entry
}

type entry struct {
	dir types.ResolvedDirectory
	err error
}

// NewIndex wraps locator with a per-run memo
func NewIndex(locator *Locator) *Index {
	return &Index{locator: locator, byID: make(map[string]entry)}
}

// Resolve returns the memoized result for item, locating it on first use
func (x *Index) Resolve(item *types.Item, displayName string) (types.ResolvedDirectory, error) {
	x.mu.Lock()
	if e, ok := x.byID[item.ID]; ok {
		x.mu.Unlock()
		return e.dir, e.err
	}
	x.mu.Unlock()

	dir, err := x.locator.Locate(item, displayName)

	x.mu.Lock()
	defer x.mu.Unlock()
	if e, ok := x.byID[item.ID]; ok {
		return e.dir, e.err
	}
	x.byID[item.ID] = entry{dir: dir, err: err}
	return dir, err
}
