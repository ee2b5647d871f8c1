// Package sessionstore holds the per-session portal state. The selected
// party and the known parties list are persisted; loading flags never leave
// the process.
package sessionstore

import "sync"

// loadingFlags counts in-flight party loads per session. Overlapping loads
// keep the flag raised until the last one finishes.
type loadingFlags struct {
	mu     sync.RWMutex
	counts map[string]int
}

func newLoadingFlags() *loadingFlags {
	return &loadingFlags{counts: make(map[string]int)}
}

func (l *loadingFlags) set(session string, loading bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if loading {
		l.counts[session]++
		return
	}
	if l.counts[session] <= 1 {
		delete(l.counts, session)
		return
	}
	l.counts[session]--
}

func (l *loadingFlags) get(session string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.counts[session] > 0
}
