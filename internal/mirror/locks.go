package mirror

import "sync"

// PathLocks hands out one mutex per path and forgets it once nobody holds
// or waits for it.
type PathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	sync.Mutex
	refs int
}

// NewPathLocks creates an empty lock set.
func NewPathLocks() *PathLocks {
	return &PathLocks{locks: make(map[string]*pathLock)}
}

// Lock blocks until path is free and returns the matching unlock func.
func (p *PathLocks) Lock(path string) func() {
	p.mu.Lock()

	l, ok := p.locks[path]
	if !ok {
		l = &pathLock{}
		p.locks[path] = l
	}

	l.refs++
	p.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		p.mu.Lock()
		defer p.mu.Unlock()

		l.refs--
		if l.refs == 0 {
			delete(p.locks, path)
		}
	}
}

func (p *PathLocks) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.locks)
}
