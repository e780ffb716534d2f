// internal/address/address.go
package address

import (
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// RoochHRP is the bech32 human-readable part of Rooch addresses.
	RoochHRP = "rooch"
	// RoochAddressLength is the byte length of a Rooch account address.
	RoochAddressLength = 32

	maxAddressLength = 128
)

// Kind identifies the textual format an address was recognised in.
type Kind int

const (
	KindUnknown Kind = iota
	KindRoochHex
	KindRoochBech32
	KindBitcoinSegwit
	KindBitcoinLegacy
)

func (k Kind) String() string {
	switch k {
	case KindRoochHex:
		return "rooch_hex"
	case KindRoochBech32:
		return "rooch_bech32"
	case KindBitcoinSegwit:
		return "bitcoin_segwit"
	case KindBitcoinLegacy:
		return "bitcoin_legacy"
	default:
		return "unknown"
	}
}

// Predicate reports whether text is an address the chain accepts.
type Predicate func(text string) bool

var bitcoinHRPs = map[string]struct{}{
	"bc":   {},
	"tb":   {},
	"bcrt": {},
}

// base58check version bytes for P2PKH and P2SH on mainnet and testnet.
var bitcoinLegacyVersions = map[byte]struct{}{
	0x00: {},
	0x05: {},
	0x6f: {},
	0xc4: {},
}

// IsValidRecipient is the recipient check used on every keystroke.
func IsValidRecipient(text string) bool {
	return NewValidator(IsValidAddress)(text)
}

// NewValidator wraps a chain predicate with the empty-input rule.
func NewValidator(p Predicate) Predicate {
	return func(text string) bool {
		if text == "" || p == nil {
			return false
		}
		return p(text)
	}
}

// IsValidAddress is the Rooch address predicate.
func IsValidAddress(text string) bool {
	return Classify(text) != KindUnknown
}

// Classify detects which supported address format text is written in.
func Classify(text string) Kind {
	if text == "" || len(text) > maxAddressLength {
		return KindUnknown
	}

	switch {
	case isRoochHex(text):
		return KindRoochHex
	case isRoochBech32(text):
		return KindRoochBech32
	case isBitcoinSegwit(text):
		return KindBitcoinSegwit
	case isBitcoinLegacy(text):
		return KindBitcoinLegacy
	}
	return KindUnknown
}

func isRoochHex(text string) bool {
	s := text
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s) != RoochAddressLength*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func isRoochBech32(text string) bool {
	hrp, data, version, err := bech32.DecodeGeneric(text)
	if err != nil || strings.ToLower(hrp) != RoochHRP || version != bech32.VersionM {
		return false
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return false
	}
	return len(payload) == RoochAddressLength
}

func isBitcoinSegwit(text string) bool {
	hrp, data, version, err := bech32.DecodeGeneric(text)
	if err != nil || len(data) < 1 {
		return false
	}
	if _, ok := bitcoinHRPs[strings.ToLower(hrp)]; !ok {
		return false
	}

	witnessVersion := data[0]
	if witnessVersion > 16 {
		return false
	}
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return false
	}

	if witnessVersion == 0 {
		return version == bech32.Version0 && (len(program) == 20 || len(program) == 32)
	}
	return version == bech32.VersionM && len(program) >= 2 && len(program) <= 40
}

func isBitcoinLegacy(text string) bool {
	payload, version, err := base58.CheckDecode(text)
	if err != nil || len(payload) != 20 {
		return false
	}
	_, ok := bitcoinLegacyVersions[version]
	return ok
}
