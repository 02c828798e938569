// Package fake provides in-memory AdminRegistry / MembershipRegistry doubles
// used only by this repository's own tests. No Registry or Membership
// contract is implemented by this module (out of scope per spec.md §1);
// these exist purely so internal/forest and internal/dao can be exercised
// without a real host.
package fake

import (
	"sync"

	"github.com/daovote/anoncore/internal/capability"
)

// Registry is a trivial in-memory AdminRegistry + MembershipRegistry.
type Registry struct {
	mu      sync.Mutex
	admins  map[capability.DAOID]capability.Address
	members map[capability.DAOID]map[capability.Address]bool
}

// New returns an empty fake registry.
func New() *Registry {
	return &Registry{
		admins:  make(map[capability.DAOID]capability.Address),
		members: make(map[capability.DAOID]map[capability.Address]bool),
	}
}

// SetAdmin registers the admin address for a DAO.
func (r *Registry) SetAdmin(d capability.DAOID, admin capability.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[d] = admin
}

// GetAdmin implements capability.AdminRegistry.
func (r *Registry) GetAdmin(d capability.DAOID) (capability.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.admins[d], nil
}

// Grant marks addr as a current member of d.
func (r *Registry) Grant(d capability.DAOID, addr capability.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[d] == nil {
		r.members[d] = make(map[capability.Address]bool)
	}
	r.members[d][addr] = true
}

// Revoke marks addr as no longer a member of d.
func (r *Registry) Revoke(d capability.DAOID, addr capability.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members[d], addr)
}

// Has implements capability.MembershipRegistry.
func (r *Registry) Has(d capability.DAOID, addr capability.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members[d][addr], nil
}
