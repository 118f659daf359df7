// Package derive maps bridge key tuples to deterministic storage addresses.
// Each record class has a purpose tag; the same tuple always yields the same
// address and no two classes or tuples collide. Derivation uses HKDF-SHA256
// over length-prefixed seed segments.
package derive

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

// Purpose tags for the derived record classes.
const (
	tagWallet       = "wallet"
	tagBridgeParams = "bridge_params"
	tagChainData    = "chain_data"
	tagSendNonce    = "send_nonce"
	tagSendTx       = "send_tx"
	tagFulfilled    = "fulfilled"
)

// Wallet derives the address of the bridge custody token account for an
// instance. The account is owned by the bridge itself: no external signer
// can move funds out except through the engine.
func Wallet(key bridge.InstanceKey) bridge.Address {
	return derive(
		u64Seed(key.Version),
		[]byte(tagWallet),
		key.Owner[:],
		key.Token[:],
		key.HomeChain[:],
	)
}

// Params derives the storage address of the instance parameter record.
func Params(key bridge.InstanceKey) bridge.Address {
	return derive(
		u64Seed(key.Version),
		[]byte(tagBridgeParams),
		key.Owner[:],
		key.Token[:],
		key.HomeChain[:],
	)
}

// ChainData derives the storage address of a chain registry entry.
func ChainData(key bridge.InstanceKey, chain bridge.Bytes32) bridge.Address {
	return derive(
		u64Seed(key.Version),
		[]byte(tagChainData),
		key.Owner[:],
		key.Token[:],
		key.HomeChain[:],
		chain[:],
	)
}

// SendNonce derives the storage address of a user's send sequencer.
func SendNonce(key bridge.InstanceKey, user bridge.Address) bridge.Address {
	return derive(
		u64Seed(key.Version),
		[]byte(tagSendNonce),
		key.Owner[:],
		key.Token[:],
		user[:],
		key.HomeChain[:],
	)
}

// SendTx derives the storage address of one outbound transfer record.
func SendTx(key bridge.InstanceKey, user bridge.Address, nonce uint64) bridge.Address {
	return derive(
		u64Seed(key.Version),
		[]byte(tagSendTx),
		key.Owner[:],
		key.Token[:],
		user[:],
		u64Seed(nonce),
		key.HomeChain[:],
	)
}

// Fulfilled derives the storage address of an inbound replay guard. The mere
// existence of a record at this address blocks a second fulfillment of the
// same remote nonce.
func Fulfilled(key bridge.InstanceKey, fromChain bridge.Bytes32, remoteNonce uint64) bridge.Address {
	return derive(
		u64Seed(key.Version),
		[]byte(tagFulfilled),
		key.Owner[:],
		key.Token[:],
		u64Seed(remoteNonce),
		fromChain[:],
		key.HomeChain[:],
	)
}

func u64Seed(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// derive stretches the length-prefixed seed segments into a 32-byte address.
// Length prefixes keep ("ab","c") and ("a","bc") apart.
func derive(seeds ...[]byte) bridge.Address {
	secret := make([]byte, 0, 256)
	for _, seed := range seeds {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(seed)))
		secret = append(secret, n[:]...)
		secret = append(secret, seed...)
	}

	var addr bridge.Address
	r := hkdf.New(sha256.New, secret, nil, []byte("bridge-account-v1"))
	if _, err := io.ReadFull(r, addr[:]); err != nil {
		// hkdf never fails for a 32-byte read
		panic(err)
	}
	return addr
}
