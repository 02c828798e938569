package forest

import (
	"math/big"

	"github.com/daovote/anoncore/internal/config"
	"github.com/daovote/anoncore/internal/poseidon"
)

type rootEntry struct {
	index uint32
	root  *big.Int
	valid bool
}

// tree is one DAO's incremental Poseidon Merkle tree plus its bounded root
// history. node_hash is persisted per level so Merkle paths are O(depth) to
// read, per the "Merkle path efficiency" design note; the pure-insertion
// filled_subtrees shortcut is not kept separately (the unified node_hash
// based update rule the component design allows covers insert, revoke and
// reinstate alike without a second code path).
type tree struct {
	depth     uint32
	nextIndex uint32

	// nodeHash[level][indexAtLevel]; level 0 holds raw leaves.
	nodeHash []map[uint32]*big.Int

	leafIndexOfCommitment map[string]uint32
	memberLeafIndex       map[string]uint32 // keyed by capability.Address string
	revokedAt             map[string]uint64 // keyed by commitment string
	reinstatedAt          map[string]uint64

	// root ring buffer, size config.MaxRoots
	ring              []rootEntry
	nextRootIndex     uint32
	rootIndexOf       map[string]uint32
	minValidRootIndex uint32
}

func newTree(depth uint32) *tree {
	t := &tree{
		depth:                 depth,
		nodeHash:              make([]map[uint32]*big.Int, depth+1),
		leafIndexOfCommitment: make(map[string]uint32),
		memberLeafIndex:       make(map[string]uint32),
		revokedAt:             make(map[string]uint64),
		reinstatedAt:          make(map[string]uint64),
		ring:                  make([]rootEntry, config.MaxRoots),
		rootIndexOf:           make(map[string]uint32),
	}
	for l := range t.nodeHash {
		t.nodeHash[l] = make(map[uint32]*big.Int)
	}
	t.appendRoot(ZeroHash(depth))
	return t
}

func (t *tree) capacity() uint32 { return uint32(1) << t.depth }

// updateLeaf writes newLeaf at slot i and recomputes every ancestor's
// node_hash up to the root, reading each sibling from the persisted table
// (or the zero cache when that subtree has never been written). Returns the
// new root. This single algorithm is used for insertion, revocation (leaf
// zeroing) and reinstatement-triggered re-registration alike.
func (t *tree) updateLeaf(i uint32, newLeaf *big.Int) *big.Int {
	t.nodeHash[0][i] = newLeaf
	cur := newLeaf
	idx := i
	for level := uint32(0); level < t.depth; level++ {
		siblingIdx := idx ^ 1
		sibling, ok := t.nodeHash[level][siblingIdx]
		if !ok {
			sibling = ZeroHash(level)
		}
		var parent *big.Int
		if idx%2 == 0 {
			parent = poseidon.MustPoseidon2(cur, sibling)
		} else {
			parent = poseidon.MustPoseidon2(sibling, cur)
		}
		idx /= 2
		t.nodeHash[level+1][idx] = parent
		cur = parent
	}
	return cur
}

// path returns, for leaf index i, the sibling at every level (root-ward)
// and a matching direction bit: bit==0 means the sibling is on the right
// (the stored node is the left child), bit==1 means the sibling is on the
// left.
func (t *tree) path(i uint32) ([]*big.Int, []int) {
	siblings := make([]*big.Int, t.depth)
	bits := make([]int, t.depth)
	idx := i
	for level := uint32(0); level < t.depth; level++ {
		siblingIdx := idx ^ 1
		sibling, ok := t.nodeHash[level][siblingIdx]
		if !ok {
			sibling = ZeroHash(level)
		}
		siblings[level] = sibling
		bits[level] = int(idx % 2)
		idx /= 2
	}
	return siblings, bits
}

func (t *tree) currentRoot() *big.Int {
	slot := (t.nextRootIndex - 1) % config.MaxRoots
	return t.ring[slot].root
}

func (t *tree) currentIndex() uint32 { return t.nextRootIndex - 1 }

// appendRoot publishes a newly computed root to the bounded FIFO window,
// evicting the reverse mapping for whatever root previously occupied the
// slot being overwritten.
func (t *tree) appendRoot(root *big.Int) {
	ri := t.nextRootIndex
	slot := ri % config.MaxRoots
	old := t.ring[slot]
	if old.valid {
		if cur, ok := t.rootIndexOf[old.root.String()]; ok && cur == old.index {
			delete(t.rootIndexOf, old.root.String())
		}
	}
	t.ring[slot] = rootEntry{index: ri, root: root, valid: true}
	t.rootIndexOf[root.String()] = ri
	t.nextRootIndex = ri + 1
}

// rootOK reports whether root is currently within the admissible window,
// and if so, at which root index.
func (t *tree) rootOK(root *big.Int) (uint32, bool) {
	ri, ok := t.rootIndexOf[root.String()]
	if !ok {
		return 0, false
	}
	slot := ri % config.MaxRoots
	if !t.ring[slot].valid || t.ring[slot].index != ri {
		return 0, false
	}
	return ri, true
}
