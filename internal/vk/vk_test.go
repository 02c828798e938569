package vk

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/require"

	"github.com/daovote/anoncore/internal/capability"
	"github.com/daovote/anoncore/internal/capability/fake"
	"github.com/daovote/anoncore/internal/errs"
)

func sampleVK() VerificationKey {
	_, _, g1, g2 := bn254.Generators()
	icPts := make([]bn254.G1Affine, 6)
	for i := range icPts {
		icPts[i].ScalarMultiplication(&g1, big.NewInt(int64(i+1)))
	}
	return VerificationKey{
		Alpha: g1,
		Beta:  g2,
		Gamma: g2,
		Delta: g2,
		IC:    icPts,
	}
}

func TestVKEncodeDecodeRoundTrip(t *testing.T) {
	v := sampleVK()
	enc := Encode(v)
	dec, err := Decode(enc)
	require.NoError(t, err)
	require.True(t, dec.Alpha.Equal(&v.Alpha))
	require.True(t, dec.Beta.Equal(&v.Beta))
	require.Len(t, dec.IC, 6)
}

func TestVKHashStable(t *testing.T) {
	v := sampleVK()
	h1 := CanonicalHash(v)
	h2 := CanonicalHash(v)
	require.Equal(t, h1, h2)
}

func TestStoreSetRequiresAdmin(t *testing.T) {
	reg := fake.New()
	var d capability.DAOID = 7
	reg.SetAdmin(d, "admin")
	s := NewStore(reg)
	_, err := s.SetVK(d, sampleVK(), "not-admin")
	require.ErrorIs(t, err, errs.ErrNotAdmin)
}

func TestStoreVersionsAreImmutable(t *testing.T) {
	reg := fake.New()
	var d capability.DAOID = 7
	reg.SetAdmin(d, "admin")
	s := NewStore(reg)
	v1 := sampleVK()
	ver1, err := s.SetVK(d, v1, "admin")
	require.NoError(t, err)
	require.Equal(t, uint32(1), ver1)

	v2 := sampleVK()
	v2.IC[0].ScalarMultiplication(&v2.IC[0], big.NewInt(99))
	ver2, err := s.SetVK(d, v2, "admin")
	require.NoError(t, err)
	require.Equal(t, uint32(2), ver2)

	got1, err := s.VKForVersion(d, 1)
	require.NoError(t, err)
	require.True(t, got1.Alpha.Equal(&v1.Alpha))
	require.False(t, got1.IC[0].Equal(&v2.IC[0]))
}

func TestStoreRejectsWrongICLength(t *testing.T) {
	reg := fake.New()
	var d capability.DAOID = 7
	reg.SetAdmin(d, "admin")
	s := NewStore(reg)
	v := sampleVK()
	v.IC = v.IC[:3]
	_, err := s.SetVK(d, v, "admin")
	require.ErrorIs(t, err, errs.ErrVkIcLengthMismatch)
}
