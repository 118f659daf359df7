package derive

import (
	"testing"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

func addr(b byte) bridge.Address {
	var a bridge.Address
	for i := range a {
		a[i] = b
	}
	return a
}

var key = bridge.InstanceKey{
	Owner:     addr(0x01),
	Token:     addr(0x02),
	Version:   1,
	HomeChain: bridge.ChainID("sol.devnet"),
}

func TestDerivationIsDeterministic(t *testing.T) {
	if Wallet(key) != Wallet(key) {
		t.Fatal("Wallet() is not deterministic")
	}
	user := addr(0x04)
	if SendTx(key, user, 7) != SendTx(key, user, 7) {
		t.Fatal("SendTx() is not deterministic")
	}
}

func TestRecordClassesDoNotCollide(t *testing.T) {
	user := addr(0x04)
	chain := bridge.ChainID("evm.97")

	addrs := map[bridge.Address]string{
		Wallet(key):                "wallet",
		Params(key):                "params",
		ChainData(key, chain):      "chain data",
		SendNonce(key, user):       "send nonce",
		SendTx(key, user, 0):       "send tx",
		Fulfilled(key, chain, 0):   "fulfilled",
		SendTx(key, user, 1):       "send tx nonce 1",
		Fulfilled(key, chain, 1):   "fulfilled nonce 1",
		SendNonce(key, addr(0x05)): "other user nonce",
	}
	if len(addrs) != 9 {
		t.Fatalf("derived addresses collide: got %d distinct of 9: %v", len(addrs), addrs)
	}
}

func TestTupleChangesChangeAddress(t *testing.T) {
	other := key
	other.Version = 2
	if Wallet(key) == Wallet(other) {
		t.Fatal("version change did not change wallet address")
	}

	other = key
	other.Token = addr(0x03)
	if Params(key) == Params(other) {
		t.Fatal("token change did not change params address")
	}

	other = key
	other.HomeChain = bridge.ChainID("sol.mainnet-beta")
	if Wallet(key) == Wallet(other) {
		t.Fatal("home chain change did not change wallet address")
	}
}

func TestFulfilledKeyedByChainAndNonce(t *testing.T) {
	evm := bridge.ChainID("evm.97")
	sui := bridge.ChainID("sui.testnet")

	if Fulfilled(key, evm, 7) == Fulfilled(key, sui, 7) {
		t.Fatal("same nonce on different chains must not collide")
	}
	if Fulfilled(key, evm, 7) == Fulfilled(key, evm, 8) {
		t.Fatal("different nonces on the same chain must not collide")
	}
}
