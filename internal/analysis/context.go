// Package analysis holds the shared, mutable store every pass reads
// from and writes into during a run.
package analysis

import (
	"sync"

	"github.com/xab-mack/smartanalyzer/internal/cfg"
	"github.com/xab-mack/smartanalyzer/internal/ir"
)

// Context is created once per analysis run. Passes communicate only
// through it: derived representations are stored as named artifacts,
// and per-function CFGs are built on demand and cached. Writes within
// one scheduler level must not overlap keys; the dependency graph is
// what synchronizes reads against writes.
type Context struct {
	Program *ir.Program

	// GoPackageDirs lists directories containing Go chaincode, for
	// the SSA front-end pass. Empty for pure Solidity projects.
	GoPackageDirs []string

	mu        sync.RWMutex
	artifacts map[string]any
	completed map[string]bool
	cfgs      map[string]*cfg.Graph
}

func NewContext(p *ir.Program) *Context {
	return &Context{
		Program:   p,
		artifacts: make(map[string]any),
		completed: make(map[string]bool),
		cfgs:      make(map[string]*cfg.Graph),
	}
}

// PutArtifact stores a named result. Re-putting the same name
// overwrites it; passes own the keys they write (prefixed by their
// pass id) so overwrites never cross pass boundaries.
func (c *Context) PutArtifact(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts[name] = value
}

// HasArtifact reports whether name has been stored.
func (c *Context) HasArtifact(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.artifacts[name]
	return ok
}

func (c *Context) rawArtifact(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.artifacts[name]
	return v, ok
}

// MarkCompleted records that the pass with the given id has run to
// completion against this context.
func (c *Context) MarkCompleted(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed[id] = true
}

// Completed reports whether the pass with the given id already ran.
func (c *Context) Completed(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.completed[id]
}

// CFG returns the control-flow graph for fn, building and caching it
// on first use.
func (c *Context) CFG(fn *ir.Function) *cfg.Graph {
	key := fn.Key()
	c.mu.RLock()
	g, ok := c.cfgs[key]
	c.mu.RUnlock()
	if ok {
		return g
	}
	g = cfg.Build(fn)
	c.mu.Lock()
	if cached, ok := c.cfgs[key]; ok {
		g = cached
	} else {
		c.cfgs[key] = g
	}
	c.mu.Unlock()
	return g
}
