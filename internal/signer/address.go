package signer

import (
	"encoding/hex"
	"errors"
	"strings"
)

const AddressLength = 20

var ErrInvalidAddress = errors.New("invalid address")

// Address is a 20-byte EVM account address.
type Address [AddressLength]byte

// ParseAddress accepts a 0x-prefixed (or bare) 40 character hex string in any case.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != 2*AddressLength {
		return a, ErrInvalidAddress
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, ErrInvalidAddress
	}
	copy(a[:], b)
	return a, nil
}

// NormalizeAddress returns the lower-case 0x form used as the storage key for a wallet.
func NormalizeAddress(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.Hex(), nil
}

func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}
