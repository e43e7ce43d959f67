package dataset

import "sync"

// MaxInternPoolSize bounds an Interner. Past it strings are returned as is.
const MaxInternPoolSize = 100000

// Interner hands out one shared copy of each repeated string. Company and
// industry names repeat on every row, so records built through an Interner
// share their backing memory.
type Interner struct {
	mu   sync.RWMutex
	pool map[string]string
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{pool: make(map[string]string)}
}

// Intern returns the canonical copy of s.
func (in *Interner) Intern(s string) string {
	in.mu.RLock()
	pooled, ok := in.pool[s]
	full := len(in.pool) >= MaxInternPoolSize
	in.mu.RUnlock()
	if ok {
		return pooled
	}
	if full {
		return s
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if pooled, ok := in.pool[s]; ok {
		return pooled
	}
	if len(in.pool) < MaxInternPoolSize {
		in.pool[s] = s
	}
	return s
}

// Len returns the number of pooled strings.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.pool)
}
