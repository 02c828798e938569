package forest

import (
	"math/big"

	"github.com/daovote/anoncore/internal/config"
	"github.com/daovote/anoncore/internal/poseidon"
)

// zeroCache holds Z[0..MaxTreeDepth], the precomputed empty-subtree hashes
// shared across every DAO's tree: Z[0] = 0, Z[k+1] = poseidon2(Z[k], Z[k]).
// It is computed once and reused, per the component design's "computed once
// at deployment to amortize cost" note.
var zeroCache = buildZeroCache()

func buildZeroCache() []*big.Int {
	z := make([]*big.Int, config.MaxTreeDepth+1)
	z[0] = big.NewInt(0)
	for k := 0; k < config.MaxTreeDepth; k++ {
		z[k+1] = poseidon.MustPoseidon2(z[k], z[k])
	}
	return z
}

// ZeroHash returns Z[level], the empty-subtree root of height level.
func ZeroHash(level uint32) *big.Int {
	return zeroCache[level]
}
