package core

import "sync/atomic"

// IDGenerator hands out unique, monotonically increasing entity ids
// starting at 1. Each engine context owns one.
type IDGenerator struct {
	last atomic.Uint64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) Next() uint64 {
	return g.last.Add(1)
}

// Observe makes sure ids handed out later are greater than id. Used when
// entities are loaded with ids chosen elsewhere.
func (g *IDGenerator) Observe(id uint64) {
	for {
		cur := g.last.Load()
		if id <= cur || g.last.CompareAndSwap(cur, id) {
			return
		}
	}
}
