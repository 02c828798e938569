// Package forest implements the per-DAO incremental Poseidon Merkle forest:
// append-only commitment trees with bounded root history, leaf revocation by
// zeroing, and O(depth) Merkle-path read-out. It is the direct descendant of
// pkg/merkle.SparseMerkleTree, generalized from a single
// rebuild-from-full-leaf-set tree to a true per-DAO incremental structure
// with persisted per-level node hashes (see DESIGN.md).
package forest

import (
	"math/big"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/daovote/anoncore/internal/bn254"
	"github.com/daovote/anoncore/internal/capability"
	"github.com/daovote/anoncore/internal/config"
	"github.com/daovote/anoncore/internal/errs"
)

// Forest owns every DAO's tree. Admin and membership checks are delegated
// to injected capability interfaces, bound once at construction, per the
// "bind dependencies by handle at initialization time" design note.
type Forest struct {
	mu     sync.Mutex
	trees  map[capability.DAOID]*tree
	admin  capability.AdminRegistry
	member capability.MembershipRegistry
	log    zerolog.Logger
}

// New returns an empty forest bound to the given capability collaborators.
func New(admin capability.AdminRegistry, member capability.MembershipRegistry) *Forest {
	return &Forest{
		trees:  make(map[capability.DAOID]*tree),
		admin:  admin,
		member: member,
		log:    log.With().Str("component", "forest").Logger(),
	}
}

func (f *Forest) requireAdmin(d capability.DAOID, caller capability.Address) error {
	a, err := f.admin.GetAdmin(d)
	if err != nil {
		return errs.Wrap(errs.Authorization, "admin lookup failed", err)
	}
	if a != caller {
		return errs.ErrNotAdmin
	}
	return nil
}

// InitResult is returned by InitTree.
type InitResult struct {
	Root      *big.Int
	RootIndex uint32
}

func (f *Forest) initTree(d capability.DAOID, depth uint32) (InitResult, error) {
	if depth < 1 || depth > config.MaxTreeDepth {
		return InitResult{}, errs.ErrInvalidDepth
	}
	if _, exists := f.trees[d]; exists {
		return InitResult{}, errs.ErrAlreadyInitialized
	}
	t := newTree(depth)
	f.trees[d] = t
	f.log.Info().Uint64("dao", uint64(d)).Uint32("depth", depth).Msg("TreeInit")
	return InitResult{Root: t.currentRoot(), RootIndex: 0}, nil
}

// InitTree requires caller to be the DAO admin.
func (f *Forest) InitTree(d capability.DAOID, depth uint32, caller capability.Address) (InitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireAdmin(d, caller); err != nil {
		return InitResult{}, err
	}
	return f.initTree(d, depth)
}

// InitTreeFromRegistry is the trusted-bootstrap variant: the host must gate
// calls to this to the registry contract's own address before invoking it.
func (f *Forest) InitTreeFromRegistry(d capability.DAOID, depth uint32) (InitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initTree(d, depth)
}

func (f *Forest) getTree(d capability.DAOID) (*tree, error) {
	t, ok := f.trees[d]
	if !ok {
		return nil, errs.ErrTreeNotInitialized
	}
	return t, nil
}

// RegisterMode selects which authorization path register() takes.
type RegisterMode int

const (
	// WithCaller checks the membership capability for holder.
	WithCaller RegisterMode = iota
	// FromRegistry bypasses the capability check (trusted bootstrap path).
	FromRegistry
)

// RegisterResult is returned by Register.
type RegisterResult struct {
	LeafIndex uint32
	NewRoot   *big.Int
	RootIndex uint32
}

// Register appends a new commitment leaf for holder.
func (f *Forest) Register(d capability.DAOID, c *big.Int, holder capability.Address, mode RegisterMode) (RegisterResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, err := f.getTree(d)
	if err != nil {
		return RegisterResult{}, err
	}
	if !bn254.IsInField(c) {
		return RegisterResult{}, errs.ErrNotInField
	}
	if mode != FromRegistry {
		ok, err := f.member.Has(d, holder)
		if err != nil {
			return RegisterResult{}, errs.Wrap(errs.Authorization, "membership lookup failed", err)
		}
		if !ok {
			return RegisterResult{}, errs.ErrNoMembership
		}
	}
	holderKey := string(holder)
	if _, exists := t.memberLeafIndex[holderKey]; exists {
		return RegisterResult{}, errs.ErrMemberExists
	}
	cKey := c.String()
	if _, exists := t.leafIndexOfCommitment[cKey]; exists {
		return RegisterResult{}, errs.ErrCommitmentExists
	}
	if t.nextIndex >= t.capacity() {
		return RegisterResult{}, errs.ErrTreeFull
	}

	i := t.nextIndex
	t.leafIndexOfCommitment[cKey] = i
	t.memberLeafIndex[holderKey] = i
	newRoot := t.updateLeaf(i, c)
	t.nextIndex++
	t.appendRoot(newRoot)

	f.log.Info().Uint64("dao", uint64(d)).Uint32("leaf", i).Msg("Commit")
	return RegisterResult{LeafIndex: i, NewRoot: newRoot, RootIndex: t.currentIndex()}, nil
}

// RemovalResult is returned by RemoveMember.
type RemovalResult struct {
	LeafIndex uint32
	NewRoot   *big.Int
	RootIndex uint32
}

// RemoveMember zeroes holder's leaf and bumps the Trailing-mode revocation
// floor before publishing the new root, so the revocation's own root is the
// first one admissible to Trailing-mode proofs post-revocation.
func (f *Forest) RemoveMember(d capability.DAOID, holder capability.Address, caller capability.Address, now uint64) (RemovalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireAdmin(d, caller); err != nil {
		return RemovalResult{}, err
	}
	t, err := f.getTree(d)
	if err != nil {
		return RemovalResult{}, err
	}
	holderKey := string(holder)
	i, exists := t.memberLeafIndex[holderKey]
	if !exists {
		return RemovalResult{}, errs.ErrMemberNotInTree
	}
	c := t.nodeHash[0][i]

	t.minValidRootIndex = t.nextRootIndex
	newRoot := t.updateLeaf(i, big.NewInt(0))
	t.appendRoot(newRoot)
	t.revokedAt[c.String()] = now
	delete(t.memberLeafIndex, holderKey)

	f.log.Info().Uint64("dao", uint64(d)).Uint32("leaf", i).Msg("Removal")
	return RemovalResult{LeafIndex: i, NewRoot: newRoot, RootIndex: t.currentIndex()}, nil
}

// ReinstateMember clears the revoked commitment's slot mapping so holder
// may register a fresh commitment into a fresh leaf slot.
func (f *Forest) ReinstateMember(d capability.DAOID, holder capability.Address, lastCommitment *big.Int, caller capability.Address, now uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireAdmin(d, caller); err != nil {
		return err
	}
	t, err := f.getTree(d)
	if err != nil {
		return err
	}
	cKey := lastCommitment.String()
	if _, wasRevoked := t.revokedAt[cKey]; !wasRevoked {
		return errs.ErrMemberNotRevoked
	}
	i, ok := t.leafIndexOfCommitment[cKey]
	if !ok {
		return errs.ErrMemberNotRevoked
	}
	if t.nodeHash[0][i].Sign() != 0 {
		return errs.ErrMemberNotRevoked
	}
	delete(t.leafIndexOfCommitment, cKey)
	t.reinstatedAt[cKey] = now

	f.log.Info().Uint64("dao", uint64(d)).Str("holder", string(holder)).Msg("Reinstatement")
	return nil
}

// CurrentRoot returns the DAO's current root.
func (f *Forest) CurrentRoot(d capability.DAOID) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.getTree(d)
	if err != nil {
		return nil, err
	}
	return t.currentRoot(), nil
}

// CurrentIndex returns the DAO's current root index.
func (f *Forest) CurrentIndex(d capability.DAOID) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.getTree(d)
	if err != nil {
		return 0, err
	}
	return t.currentIndex(), nil
}

// MinRootIndex returns the DAO's Trailing-mode revocation floor.
func (f *Forest) MinRootIndex(d capability.DAOID) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.getTree(d)
	if err != nil {
		return 0, err
	}
	return t.minValidRootIndex, nil
}

// RootOK reports whether root is currently in the DAO's history window,
// and if so, its root index.
func (f *Forest) RootOK(d capability.DAOID, root *big.Int) (uint32, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.getTree(d)
	if err != nil {
		return 0, false, err
	}
	ri, ok := t.rootOK(root)
	return ri, ok, nil
}

// GetMerklePath returns the sibling and direction-bit vectors for leafIndex.
func (f *Forest) GetMerklePath(d capability.DAOID, leafIndex uint32) ([]*big.Int, []int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.getTree(d)
	if err != nil {
		return nil, nil, err
	}
	if leafIndex >= t.capacity() {
		return nil, nil, errs.ErrBadLength
	}
	s, b := t.path(leafIndex)
	return s, b, nil
}

// Depth returns the DAO tree's fixed depth.
func (f *Forest) Depth(d capability.DAOID) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := f.getTree(d)
	if err != nil {
		return 0, err
	}
	return t.depth, nil
}
