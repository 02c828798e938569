package forest

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daovote/anoncore/internal/capability"
	"github.com/daovote/anoncore/internal/capability/fake"
	"github.com/daovote/anoncore/internal/config"
	"github.com/daovote/anoncore/internal/errs"
	"github.com/daovote/anoncore/internal/poseidon"
)

const dao capability.DAOID = 1
const admin capability.Address = "admin"

func newTestForest(t *testing.T) (*Forest, *fake.Registry) {
	t.Helper()
	reg := fake.New()
	reg.SetAdmin(dao, admin)
	return New(reg, reg), reg
}

func TestInitTreeRequiresAdmin(t *testing.T) {
	f, _ := newTestForest(t)
	_, err := f.InitTree(dao, 3, "not-admin")
	require.ErrorIs(t, err, errs.ErrNotAdmin)
}

func TestInitTreeRootIsZeroHash(t *testing.T) {
	f, _ := newTestForest(t)
	res, err := f.InitTree(dao, 3, admin)
	require.NoError(t, err)
	require.Equal(t, 0, res.Root.Cmp(ZeroHash(3)))
	require.Equal(t, uint32(0), res.RootIndex)
}

func TestInitTreeRejectsBadDepth(t *testing.T) {
	f, _ := newTestForest(t)
	_, err := f.InitTree(dao, 0, admin)
	require.ErrorIs(t, err, errs.ErrInvalidDepth)
	_, err = f.InitTree(dao, config.MaxTreeDepth+1, admin)
	require.ErrorIs(t, err, errs.ErrInvalidDepth)
}

func TestInitTreeRejectsDoubleInit(t *testing.T) {
	f, _ := newTestForest(t)
	_, err := f.InitTree(dao, 3, admin)
	require.NoError(t, err)
	_, err = f.InitTree(dao, 3, admin)
	require.ErrorIs(t, err, errs.ErrAlreadyInitialized)
}

func TestRegisterRequiresMembership(t *testing.T) {
	f, _ := newTestForest(t)
	_, err := f.InitTree(dao, 3, admin)
	require.NoError(t, err)
	c := big.NewInt(42)
	_, err = f.Register(dao, c, "holder1", WithCaller)
	require.ErrorIs(t, err, errs.ErrNoMembership)
}

func TestRegisterAndMerklePathRecomputesRoot(t *testing.T) {
	f, reg := newTestForest(t)
	_, err := f.InitTree(dao, 3, admin)
	require.NoError(t, err)
	reg.Grant(dao, "holder1")
	c := big.NewInt(42)
	res, err := f.Register(dao, c, "holder1", WithCaller)
	require.NoError(t, err)
	require.Equal(t, uint32(0), res.LeafIndex)

	siblings, bits, err := f.GetMerklePath(dao, 0)
	require.NoError(t, err)
	require.Len(t, siblings, 3)

	cur := c
	for level := 0; level < 3; level++ {
		var h *big.Int
		if bits[level] == 0 {
			h, err = poseidon.Poseidon2(cur, siblings[level])
		} else {
			h, err = poseidon.Poseidon2(siblings[level], cur)
		}
		require.NoError(t, err)
		cur = h
	}
	root, err := f.CurrentRoot(dao)
	require.NoError(t, err)
	require.Equal(t, 0, cur.Cmp(root))
}

func TestRegisterRejectsDuplicateCommitmentAndHolder(t *testing.T) {
	f, reg := newTestForest(t)
	_, err := f.InitTree(dao, 3, admin)
	require.NoError(t, err)
	reg.Grant(dao, "holder1")
	reg.Grant(dao, "holder2")
	c := big.NewInt(42)
	_, err = f.Register(dao, c, "holder1", WithCaller)
	require.NoError(t, err)

	_, err = f.Register(dao, c, "holder2", WithCaller)
	require.ErrorIs(t, err, errs.ErrCommitmentExists)

	_, err = f.Register(dao, big.NewInt(99), "holder1", WithCaller)
	require.ErrorIs(t, err, errs.ErrMemberExists)
}

func TestTreeFullAtCapacity(t *testing.T) {
	f, reg := newTestForest(t)
	_, err := f.InitTree(dao, 1, admin) // capacity 2
	require.NoError(t, err)
	reg.Grant(dao, "h1")
	reg.Grant(dao, "h2")
	reg.Grant(dao, "h3")
	_, err = f.Register(dao, big.NewInt(1), "h1", WithCaller)
	require.NoError(t, err)
	_, err = f.Register(dao, big.NewInt(2), "h2", WithCaller)
	require.NoError(t, err)
	_, err = f.Register(dao, big.NewInt(3), "h3", WithCaller)
	require.ErrorIs(t, err, errs.ErrTreeFull)
}

func TestRemoveMemberBumpsMinValidRootIndex(t *testing.T) {
	f, reg := newTestForest(t)
	_, err := f.InitTree(dao, 3, admin)
	require.NoError(t, err)
	reg.Grant(dao, "holder1")
	_, err = f.Register(dao, big.NewInt(42), "holder1", WithCaller)
	require.NoError(t, err)

	idxBefore, err := f.CurrentIndex(dao)
	require.NoError(t, err)

	_, err = f.RemoveMember(dao, "holder1", admin, 1000)
	require.NoError(t, err)

	minIdx, err := f.MinRootIndex(dao)
	require.NoError(t, err)
	require.Equal(t, idxBefore+1, minIdx)
}

func TestRemoveMemberRequiresAdmin(t *testing.T) {
	f, reg := newTestForest(t)
	_, err := f.InitTree(dao, 3, admin)
	require.NoError(t, err)
	reg.Grant(dao, "holder1")
	_, err = f.Register(dao, big.NewInt(42), "holder1", WithCaller)
	require.NoError(t, err)

	_, err = f.RemoveMember(dao, "holder1", "not-admin", 1000)
	require.ErrorIs(t, err, errs.ErrNotAdmin)
}

func TestReinstateAllowsFreshRegistration(t *testing.T) {
	f, reg := newTestForest(t)
	_, err := f.InitTree(dao, 3, admin)
	require.NoError(t, err)
	reg.Grant(dao, "holder1")
	c := big.NewInt(42)
	_, err = f.Register(dao, c, "holder1", WithCaller)
	require.NoError(t, err)
	_, err = f.RemoveMember(dao, "holder1", admin, 1000)
	require.NoError(t, err)

	err = f.ReinstateMember(dao, "holder1", c, admin, 2000)
	require.NoError(t, err)

	newC := big.NewInt(4242)
	res, err := f.Register(dao, newC, "holder1", WithCaller)
	require.NoError(t, err)
	require.Equal(t, uint32(1), res.LeafIndex)
}

func TestRootOKWindowEviction(t *testing.T) {
	f, reg := newTestForest(t)
	_, err := f.InitTree(dao, config.MaxTreeDepth, admin)
	require.NoError(t, err)
	root0, err := f.CurrentRoot(dao)
	require.NoError(t, err)

	for i := 0; i < config.MaxRoots+2; i++ {
		holder := capability.Address(big.NewInt(int64(i)).String())
		reg.Grant(dao, holder)
		_, err = f.Register(dao, big.NewInt(int64(i+1)), holder, WithCaller)
		require.NoError(t, err)
	}

	_, ok, err := f.RootOK(dao, root0)
	require.NoError(t, err)
	require.False(t, ok, "root0 should have been evicted from the window")
}

func TestDepthOneAndMaxDepthBoundaries(t *testing.T) {
	f1, reg1 := newTestForest(t)
	_, err := f1.InitTree(dao, 1, admin)
	require.NoError(t, err)
	reg1.Grant(dao, "h0")
	reg1.Grant(dao, "h1")
	_, err = f1.Register(dao, big.NewInt(1), "h0", WithCaller)
	require.NoError(t, err)
	res, err := f1.Register(dao, big.NewInt(2), "h1", WithCaller)
	require.NoError(t, err)
	require.Equal(t, uint32(1), res.LeafIndex)

	f2, reg2 := newTestForest(t)
	_, err = f2.InitTree(dao, config.MaxTreeDepth, admin)
	require.NoError(t, err)
	reg2.Grant(dao, "last")
	regRes, err := f2.Register(dao, big.NewInt(42), "last", WithCaller)
	require.NoError(t, err)
	require.Equal(t, uint32(0), regRes.LeafIndex)

	siblings, bits := f2.getMerklePathForTest(t, dao, regRes.LeafIndex)
	require.Len(t, siblings, int(config.MaxTreeDepth))
	require.Len(t, bits, int(config.MaxTreeDepth))
}

func (f *Forest) getMerklePathForTest(t *testing.T, d capability.DAOID, leafIndex uint32) ([]*big.Int, []int) {
	t.Helper()
	siblings, bits, err := f.GetMerklePath(d, leafIndex)
	require.NoError(t, err)
	return siblings, bits
}
