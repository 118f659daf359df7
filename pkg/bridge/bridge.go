// Package bridge implements the accounting and authorization core of a
// two-way token bridge between the home ledger and registered remote chains.
// The engine keeps per-instance parameters, per-chain exchange data, per-user
// send nonces and per-inbound replay guards, and computes the fee-adjusted
// amounts moved on every send and fulfill.
package bridge

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MaxFee is the fee denominator: 10000 basis points = 100%.
const MaxFee = 10000

// Bytes32 is a generic 32-byte value used for remote-chain addresses and for
// chain identifiers encoded as null-terminated strings (e.g. "evm.97").
// Remote addresses do not have to be valid public keys, which is why they are
// kept separate from the home-chain Address type.
type Bytes32 [32]byte

// Address identifies an account on the home chain.
type Address [32]byte

// ChainID builds a Bytes32 chain identifier from a string such as "evm.97"
// or "sol.mainnet-beta". Input longer than 32 bytes is truncated.
func ChainID(s string) Bytes32 {
	var b Bytes32
	copy(b[:], s)
	return b
}

// IsZero reports whether b is the all-zero value.
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// String renders b as the original string when it is a null-terminated
// printable sequence, and as 0x-prefixed hex otherwise.
func (b Bytes32) String() string {
	if s, ok := b.printable(); ok {
		return s
	}
	return hexutil.Encode(b[:])
}

// Hex returns the canonical 0x-prefixed hex form, used as a storage key.
func (b Bytes32) Hex() string {
	return hexutil.Encode(b[:])
}

func (b Bytes32) printable() (string, bool) {
	trimmed := bytes.TrimRight(b[:], "\x00")
	if len(trimmed) == 0 {
		return "", false
	}
	for _, c := range trimmed {
		if c < 0x20 || c > 0x7e {
			return "", false
		}
	}
	// reject embedded nulls ("a\x00b" is not a chain id)
	if bytes.ContainsRune(trimmed, 0) {
		return "", false
	}
	return string(trimmed), true
}

// MarshalText implements encoding.TextMarshaler.
func (b Bytes32) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts either 0x-prefixed hex of exactly 32 bytes or a plain
// string of at most 32 bytes, which is null-padded.
func (b *Bytes32) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		raw, err := hexutil.Decode(s)
		if err != nil {
			return fmt.Errorf("invalid bytes32 hex: %w", err)
		}
		if len(raw) != 32 {
			return fmt.Errorf("invalid bytes32 length: %d", len(raw))
		}
		copy(b[:], raw)
		return nil
	}
	if len(s) > 32 {
		return fmt.Errorf("bytes32 string too long: %d", len(s))
	}
	*b = Bytes32{}
	copy(b[:], s)
	return nil
}

// Hex returns the 0x-prefixed hex form of the address.
func (a Address) Hex() string {
	return hexutil.Encode(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText parses a 0x-prefixed 32-byte hex address.
func (a *Address) UnmarshalText(text []byte) error {
	raw, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("invalid address length: %d", len(raw))
	}
	copy(a[:], raw)
	return nil
}

// HexToAddress parses a 0x-prefixed 32-byte hex string, panicking on invalid
// input. Intended for tests and fixtures.
func HexToAddress(s string) Address {
	var a Address
	if err := a.UnmarshalText([]byte(s)); err != nil {
		panic(err)
	}
	return a
}

// InstanceKey identifies a bridge instance. One instance handles exactly one
// token for one owner; version allows multiple instances per tuple.
type InstanceKey struct {
	Owner     Address `json:"owner"`
	Token     Address `json:"token"`
	Version   uint64  `json:"version"`
	HomeChain Bytes32 `json:"home_chain"`
}

// Params holds the mutable parameters of a bridge instance. Only the
// instance owner may change them.
type Params struct {
	FeeSend      uint16  `json:"fee_send"`
	FeeFulfill   uint16  `json:"fee_fulfill"`
	LimitSend    uint64  `json:"limit_send"`
	FeeRecipient Address `json:"fee_recipient"`
	Paused       bool    `json:"paused"`
}

// ChainData is the registry entry for one remote chain: whether bridging
// to/from it is enabled and the exchange-rate multiplier reconciling decimal
// differences. ExchangeRateFrom is never zero for a stored entry.
type ChainData struct {
	Enabled          bool   `json:"enabled"`
	ExchangeRateFrom uint64 `json:"exchange_rate_from"`
}

// SendTx is the immutable receipt of a completed outbound transfer. Amount is
// the post-fee amount in destination-chain units. Block is the ledger height
// at creation time.
type SendTx struct {
	Initiator Address `json:"initiator"`
	Amount    uint64  `json:"amount"`
	To        Bytes32 `json:"to"`
	Nonce     uint64  `json:"nonce"`
	Timestamp int64   `json:"timestamp"`
	ToChain   Bytes32 `json:"to_chain"`
	Block     uint64  `json:"block"`
}
