package bn254

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/require"

	"github.com/daovote/anoncore/internal/errs"
)

func TestIsInField(t *testing.T) {
	r := FrModulus()
	require.True(t, IsInField(big.NewInt(0)))
	require.True(t, IsInField(new(big.Int).Sub(r, big.NewInt(1))))
	require.False(t, IsInField(r))
	require.False(t, IsInField(new(big.Int).Add(r, big.NewInt(1))))
	require.False(t, IsInField(big.NewInt(-1)))
}

func TestDecodeFrRejectsModulus(t *testing.T) {
	b := EncodeFr(FrModulus())
	_, err := DecodeFr(b[:])
	require.ErrorIs(t, err, errs.ErrNotInField)
}

func TestFrRoundTrip(t *testing.T) {
	x := big.NewInt(123456789)
	b := EncodeFr(x)
	got, err := DecodeFr(b[:])
	require.NoError(t, err)
	require.Equal(t, 0, x.Cmp(got))
}

func TestG1RoundTrip(t *testing.T) {
	_, _, g1Gen, _ := bn254.Generators()
	enc := G1Encode(g1Gen)
	dec, err := G1Decode(enc[:])
	require.NoError(t, err)
	require.True(t, dec.Equal(&g1Gen))
}

func TestG2RoundTrip(t *testing.T) {
	_, _, _, g2Gen := bn254.Generators()
	enc := G2Encode(g2Gen)
	dec, err := G2Decode(enc[:])
	require.NoError(t, err)
	require.True(t, dec.Equal(&g2Gen))
}

func TestG1DecodeRejectsOffCurve(t *testing.T) {
	var b [G1Size]byte
	b[31] = 1 // x=1
	b[63] = 3 // y=3: y^2=9 but x^3+3=4, so not on curve
	_, err := G1Decode(b[:])
	require.ErrorIs(t, err, errs.ErrNotOnCurve)
}

func TestG1NegAndAdd(t *testing.T) {
	_, _, g1Gen, _ := bn254.Generators()
	neg := G1Neg(g1Gen)
	sum := G1Add(g1Gen, neg)
	require.True(t, sum.IsInfinity())
}

func TestG1MulScalarMatchesAdd(t *testing.T) {
	_, _, g1Gen, _ := bn254.Generators()
	two := G1MulScalar(g1Gen, big.NewInt(2))
	doubled := G1Add(g1Gen, g1Gen)
	require.True(t, two.Equal(&doubled))
}

func TestPairingCheckSelfInverse(t *testing.T) {
	_, _, g1Gen, g2Gen := bn254.Generators()
	negG1 := G1Neg(g1Gen)
	ok, err := PairingCheck([]G1{g1Gen, negG1}, []G2{g2Gen, g2Gen})
	require.NoError(t, err)
	require.True(t, ok)
}
