package health

import (
	"strconv"
	"sync"
)

// generation identifies one period between invalidations of a service.
type generation struct {
	epoch uint64
	n     uint64
}

// flightKey scopes a shared verification to one generation, so a check that
// starts after an invalidation never joins a call that started before it.
func (g generation) flightKey(service string) string {
	return service + "@" + strconv.FormatUint(g.epoch, 10) + "." + strconv.FormatUint(g.n, 10)
}

// generations tracks invalidations per service. epoch advances on a full
// invalidation and resets every per-service counter.
type generations struct {
	mu    sync.Mutex
	epoch uint64
	keys  map[string]uint64
}

func (g *generations) current(service string) generation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return generation{epoch: g.epoch, n: g.keys[service]}
}

// advance starts a new generation for service and runs fn before any
// concurrent commit can observe it.
func (g *generations) advance(service string, fn func()) generation {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = make(map[string]uint64)
	}
	g.keys[service]++
	if fn != nil {
		fn()
	}
	return generation{epoch: g.epoch, n: g.keys[service]}
}

// advanceAll starts a new generation for every service.
func (g *generations) advanceAll(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.epoch++
	g.keys = nil
	if fn != nil {
		fn()
	}
}

// commit runs fn only if service is still in generation gen. It reports
// whether fn ran.
func (g *generations) commit(service string, gen generation, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.epoch != gen.epoch || g.keys[service] != gen.n {
		return false
	}
	fn()
	return true
}
