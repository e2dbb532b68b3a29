// Package agentcatalog holds the process-wide registry of domain specialists:
// what each domain is allowed to do, which tools it may call, and how many
// ReAct iterations it gets before the tiered executor or fixed pipeline gives
// up on it.
package agentcatalog

import (
	"fmt"
	"sync"
)

// AgentSpec describes one domain specialist.
type AgentSpec struct {
	ID                string
	DisplayName       string
	Domain            string
	Instructions      string
	AllowedTools      []string // empty means all tools are allowed
	MaxIterations     int
	RequiresWorkspace bool
	Priority          int
	TokenBudget       int // 0 means no budget cap
}

// Catalog is a process-wide, read-after-init registry of AgentSpecs, indexed
// both by id and by domain. register/unregister mutate it under a single
// writer lock; readers always see a consistent snapshot.
type Catalog struct {
	mu       sync.RWMutex
	byID     map[string]AgentSpec
	order    []string // insertion order of ids, built-ins first, for deterministic domain-index first-match
	byDomain map[string]string
}

// New returns a Catalog pre-populated with the built-in specialists, inserted
// in the fixed order declared by builtinSpecs so domain lookups are
// deterministic.
func New() *Catalog {
	c := &Catalog{
		byID:     make(map[string]AgentSpec),
		byDomain: make(map[string]string),
	}
	for _, spec := range builtinSpecs() {
		c.insertLocked(spec)
	}
	return c
}

// Get returns the spec registered under id.
func (c *Catalog) Get(id string) (AgentSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	spec, ok := c.byID[id]
	return spec, ok
}

// GetByDomain returns the first spec registered for domain, in insertion
// order — built-ins win over later user-registered specs for the same
// domain unless the built-in is explicitly unregistered first.
func (c *Catalog) GetByDomain(domain string) (AgentSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byDomain[domain]
	if !ok {
		return AgentSpec{}, false
	}
	spec, ok := c.byID[id]
	return spec, ok
}

// All returns every registered spec in insertion order.
func (c *Catalog) All() []AgentSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	specs := make([]AgentSpec, 0, len(c.order))
	for _, id := range c.order {
		specs = append(specs, c.byID[id])
	}
	return specs
}

// Register adds or replaces a user-defined spec. Re-registering an existing
// id keeps its original position in the domain first-match order.
func (c *Catalog) Register(spec AgentSpec) error {
	if spec.ID == "" {
		return fmt.Errorf("agentcatalog: spec id cannot be empty")
	}
	if spec.Domain == "" {
		return fmt.Errorf("agentcatalog: spec %q must have a domain", spec.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertLocked(spec)
	return nil
}

// insertLocked must be called with mu held for writing.
func (c *Catalog) insertLocked(spec AgentSpec) {
	if _, exists := c.byID[spec.ID]; !exists {
		c.order = append(c.order, spec.ID)
	}
	c.byID[spec.ID] = spec
	if _, exists := c.byDomain[spec.Domain]; !exists {
		c.byDomain[spec.Domain] = spec.ID
	}
}

// Unregister removes a spec by id. If it was the domain index's current
// entry, the next spec registered for that domain (in insertion order)
// becomes the new first match.
func (c *Catalog) Unregister(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	spec, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("agentcatalog: no spec registered with id %q", id)
	}
	delete(c.byID, id)

	newOrder := c.order[:0:0]
	for _, existing := range c.order {
		if existing != id {
			newOrder = append(newOrder, existing)
		}
	}
	c.order = newOrder

	if c.byDomain[spec.Domain] == id {
		delete(c.byDomain, spec.Domain)
		for _, existing := range c.order {
			if c.byID[existing].Domain == spec.Domain {
				c.byDomain[spec.Domain] = existing
				break
			}
		}
	}
	return nil
}

// Reset discards every registered spec and restores only the built-ins.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[string]AgentSpec)
	c.byDomain = make(map[string]string)
	c.order = nil
	for _, spec := range builtinSpecs() {
		c.insertLocked(spec)
	}
}

// FilterTools returns the subset of available tool names a spec may use. An
// empty AllowedTools means no restriction: every available tool is returned.
func FilterTools(spec AgentSpec, available []string) []string {
	if len(spec.AllowedTools) == 0 {
		return available
	}
	allowed := make(map[string]bool, len(spec.AllowedTools))
	for _, name := range spec.AllowedTools {
		allowed[name] = true
	}
	filtered := make([]string, 0, len(available))
	for _, name := range available {
		if allowed[name] {
			filtered = append(filtered, name)
		}
	}
	return filtered
}
