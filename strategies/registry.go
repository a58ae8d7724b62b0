package strategies

import (
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = make(map[string]Rules)
)

func init() {
	for _, r := range []Rules{RSI{}, EMACross{}, EMACrossADX{}, Bollinger{}, MACD{}, BuyAndHold{}, Never{}} {
		Register(r)
	}
}

// Register adds or replaces a rule kind under its name.
func Register(r Rules) {
	mu.Lock()
	defer mu.Unlock()
	registry[r.Name()] = r
}

func Lookup(name string) (Rules, bool) {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := registry[name]
	return r, ok
}

// Names lists the registered kinds in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
