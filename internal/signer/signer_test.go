package signer

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey     = "0x0000000000000000000000000000000000000000000000000000000000000001"
	testAddress = "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"
	testWallet  = "0xAbCdEf0123456789aBcDeF0123456789ABCDEF01"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := New(testKey)
	require.NoError(t, err)
	return s
}

func TestKeccak256_Empty(t *testing.T) {
	got := hex.EncodeToString(Keccak256())
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", got)
}

func TestNew_DerivesAddress(t *testing.T) {
	s := newTestSigner(t)
	assert.True(t, s.Configured())
	assert.Equal(t, testAddress, s.Address().Hex())
}

func TestNew_InvalidKeys(t *testing.T) {
	for _, key := range []string{
		"zz",
		"0x01",
		"0x0000000000000000000000000000000000000000000000000000000000000000",
	} {
		_, err := New(key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestUnconfigured(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)
	assert.False(t, s.Configured())
	assert.Equal(t, Address{}, s.Address())

	_, err = s.SignScore(testWallet, "round-1", 920)
	assert.ErrorIs(t, err, ErrUnconfigured)

	_, err = s.SignBadge(testWallet, "FIVE_GAMES")
	assert.ErrorIs(t, err, ErrUnconfigured)
}

func TestSignScore_RecoversSigner(t *testing.T) {
	s := newTestSigner(t)

	sig, err := s.SignScore(testWallet, "round-1", 920)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sig, "0x"))
	require.Len(t, sig, 2+2*signatureLength)

	raw, _ := hex.DecodeString(sig[2:])
	assert.Contains(t, []byte{27, 28}, raw[64])

	wallet, err := ParseAddress(testWallet)
	require.NoError(t, err)
	got, err := Recover(ScoreDigest(wallet, "round-1", 920), sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), got)
}

func TestSignScore_Deterministic(t *testing.T) {
	s := newTestSigner(t)
	a, err := s.SignScore(testWallet, "round-1", 920)
	require.NoError(t, err)
	b, err := s.SignScore(strings.ToLower(testWallet), "round-1", 920)
	require.NoError(t, err)
	assert.Equal(t, a, b, "wallet case must not change the digest")
}

func TestSignScore_BindsEveryField(t *testing.T) {
	s := newTestSigner(t)
	base, _ := s.SignScore(testWallet, "round-1", 920)

	other, _ := s.SignScore(testWallet, "round-2", 920)
	assert.NotEqual(t, base, other)

	other, _ = s.SignScore(testWallet, "round-1", 921)
	assert.NotEqual(t, base, other)

	other, _ = s.SignScore(testAddress, "round-1", 920)
	assert.NotEqual(t, base, other)

	wallet, _ := ParseAddress(testWallet)
	if recovered, err := Recover(ScoreDigest(wallet, "round-1", 1000), base); err == nil {
		assert.NotEqual(t, s.Address(), recovered, "signature must not verify for a different score")
	}
}

func TestSignScore_RejectsBadInput(t *testing.T) {
	s := newTestSigner(t)
	_, err := s.SignScore("not-a-wallet", "round-1", 920)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = s.SignScore(testWallet, "round-1", -1)
	assert.Error(t, err)
}

func TestSignBadge_RecoversSigner(t *testing.T) {
	s := newTestSigner(t)
	sig, err := s.SignBadge(testWallet, "FIVE_GAMES")
	require.NoError(t, err)

	wallet, _ := ParseAddress(testWallet)
	got, err := Recover(BadgeDigest(wallet, "FIVE_GAMES"), sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), got)
}

func TestRecover_Malformed(t *testing.T) {
	_, err := Recover(make([]byte, 32), "0x1234")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
