package checkout

import "sync"

// Guard rejects a second submission on the same session while one is still
// talking to the course platform. The flow never retries on its own, so a
// rejected duplicate simply surfaces as a validation failure.
type Guard struct {
	mu     sync.Mutex
	active map[string]bool
}

func NewGuard() *Guard {
	return &Guard{active: make(map[string]bool)}
}

// Begin marks a submission in flight. It reports false when one is already
// running for the key.
func (g *Guard) Begin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active[key] {
		return false
	}
	g.active[key] = true
	return true
}

func (g *Guard) End(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}
