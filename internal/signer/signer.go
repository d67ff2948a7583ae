package signer

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

var (
	ErrUnconfigured     = errors.New("signer key not configured")
	ErrInvalidKey       = errors.New("invalid signer key")
	ErrInvalidSignature = errors.New("invalid signature")
)

const signatureLength = 65

// Signer produces EIP-191 personal-message signatures that an EVM contract can
// check with ecrecover. The key is fixed for the lifetime of the Signer.
type Signer struct {
	key     *secp256k1.PrivateKey
	address Address
}

// New builds a Signer from a hex encoded 32-byte private key. An empty key
// yields an unconfigured Signer whose sign calls fail with ErrUnconfigured.
func New(keyHex string) (*Signer, error) {
	keyHex = strings.TrimPrefix(strings.TrimSpace(keyHex), "0x")
	if keyHex == "" {
		return &Signer{}, nil
	}
	raw, err := hex.DecodeString(keyHex)
	if err != nil || len(raw) != 32 {
		return nil, ErrInvalidKey
	}
	key := secp256k1.PrivKeyFromBytes(raw)
	if key.Key.IsZero() {
		return nil, ErrInvalidKey
	}
	return &Signer{key: key, address: pubKeyAddress(key.PubKey())}, nil
}

func (s *Signer) Configured() bool {
	return s != nil && s.key != nil
}

// Address is the account the verifier contract must trust. Zero when unconfigured.
func (s *Signer) Address() Address {
	if !s.Configured() {
		return Address{}
	}
	return s.address
}

// ScoreDigest is keccak256(abi.encodePacked(address wallet, string roundId, uint256 score)).
func ScoreDigest(wallet Address, roundID string, score int) []byte {
	var word [32]byte
	binary.BigEndian.PutUint64(word[24:], uint64(score))
	return Keccak256(wallet[:], []byte(roundID), word[:])
}

// BadgeDigest is keccak256(abi.encodePacked(address wallet, string badgeId)).
func BadgeDigest(wallet Address, badgeID string) []byte {
	return Keccak256(wallet[:], []byte(badgeID))
}

// SignScore authorizes the verifier contract to record score for roundID on behalf of wallet.
func (s *Signer) SignScore(wallet, roundID string, score int) (string, error) {
	if score < 0 {
		return "", fmt.Errorf("signing score: negative score %d", score)
	}
	addr, err := ParseAddress(wallet)
	if err != nil {
		return "", fmt.Errorf("signing score: %w", err)
	}
	return s.signDigest(ScoreDigest(addr, roundID, score))
}

// SignBadge authorizes minting badgeID to wallet.
func (s *Signer) SignBadge(wallet, badgeID string) (string, error) {
	addr, err := ParseAddress(wallet)
	if err != nil {
		return "", fmt.Errorf("signing badge: %w", err)
	}
	return s.signDigest(BadgeDigest(addr, badgeID))
}

func (s *Signer) signDigest(digest []byte) (string, error) {
	if !s.Configured() {
		return "", ErrUnconfigured
	}
	compact := ecdsa.SignCompact(s.key, EthSignedMessageHash(digest), false)
	// compact is v || r || s; the EVM expects r || s || v
	sig := make([]byte, signatureLength)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return "0x" + hex.EncodeToString(sig), nil
}

// Recover returns the address that produced signature over digest, where
// digest is the un-prefixed message hash (ScoreDigest or BadgeDigest).
func Recover(digest []byte, signature string) (Address, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil || len(raw) != signatureLength {
		return Address{}, ErrInvalidSignature
	}
	v := raw[64]
	if v < 27 {
		v += 27
	}
	compact := make([]byte, signatureLength)
	compact[0] = v
	copy(compact[1:], raw[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, EthSignedMessageHash(digest))
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return pubKeyAddress(pub), nil
}

// EthSignedMessageHash applies the EIP-191 "personal_sign" prefix to a 32-byte hash.
func EthSignedMessageHash(digest []byte) []byte {
	return Keccak256([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(digest))), digest)
}

func Keccak256(parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func pubKeyAddress(pub *secp256k1.PublicKey) Address {
	var a Address
	uncompressed := pub.SerializeUncompressed()
	copy(a[:], Keccak256(uncompressed[1:])[12:])
	return a
}
