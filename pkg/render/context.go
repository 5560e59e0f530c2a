package render

import "sync"

// Context is the mutable variable store plus renderer handed to a plugin
// run. Renders may run concurrently; SetVariable excludes them.
type Context struct {
	mu     sync.RWMutex
	vars   map[string]string
	engine *Engine
}

// NewContext creates a context seeded with a copy of vars.
func NewContext(engine *Engine, vars map[string]string) *Context {
	c := &Context{
		vars:   make(map[string]string, len(vars)),
		engine: engine,
	}
	for k, v := range vars {
		c.vars[k] = v
	}
	return c
}

// SetVariable binds key to value, replacing any previous value.
func (c *Context) SetVariable(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars[key] = value
}

// SetDefault binds key only when it is not set yet and reports whether it did.
func (c *Context) SetDefault(key, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.vars[key]; ok {
		return false
	}
	c.vars[key] = value
	return true
}

// Variable returns the value bound to key.
func (c *Context) Variable(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vars[key]
	return v, ok
}

// Variables returns a snapshot of every binding.
func (c *Context) Variables() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}

// Evaluate renders tmpl against a snapshot of the variables taken at call
// time. The lock is not held while rendering, so slow filter plugins do not
// block SetVariable.
func (c *Context) Evaluate(tmpl string) (string, error) {
	return c.engine.Render(tmpl, c.Variables())
}
