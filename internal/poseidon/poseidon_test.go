package poseidon

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daovote/anoncore/internal/errs"
)

// Known-answer vectors, bit-exact with circomlib/iden3's classic Poseidon.
// CI must fail if either diverges (component contract, spec.md P6).
func TestPoseidon2KnownAnswer(t *testing.T) {
	h, err := Poseidon2(big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)
	require.Equal(t, "7853200120776062878684798364095072458815029376092732009249414926327459813530", h.String())
}

func TestPoseidon3KnownAnswer(t *testing.T) {
	h, err := Poseidon3(big.NewInt(1), big.NewInt(2), big.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, "6542985608222806190361240322586112750744169038454362455181422643027100751666", h.String())
}

func TestPoseidonDeterministic(t *testing.T) {
	h1, err := Poseidon2(big.NewInt(5), big.NewInt(7))
	require.NoError(t, err)
	h2, err := Poseidon2(big.NewInt(5), big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestPoseidonDistinctInputsDiffer(t *testing.T) {
	h1, err := Poseidon2(big.NewInt(5), big.NewInt(7))
	require.NoError(t, err)
	h2, err := Poseidon2(big.NewInt(7), big.NewInt(5))
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestPoseidonRejectsFieldViolation(t *testing.T) {
	_, err := Poseidon2(bn254Modulus(), big.NewInt(1))
	require.ErrorIs(t, err, errs.ErrNotInField)
}

func bn254Modulus() *big.Int {
	r, _ := new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
	return r
}
