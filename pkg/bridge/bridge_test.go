package bridge

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBytes32ChainID(t *testing.T) {
	b := ChainID("evm.97")
	if b.String() != "evm.97" {
		t.Fatalf("String() = %q, want evm.97", b.String())
	}
	if b.IsZero() {
		t.Fatal("IsZero() = true for non-empty chain id")
	}
	if (Bytes32{}).String() == "evm.97" {
		t.Fatal("zero value must not render as a chain id")
	}
}

func TestBytes32Marshaling(t *testing.T) {
	t.Run("printable chain ids round-trip as strings", func(t *testing.T) {
		b := ChainID("sol.mainnet-beta")
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Marshal() failed: %v", err)
		}
		if string(data) != `"sol.mainnet-beta"` {
			t.Fatalf("marshaled = %s", data)
		}

		var back Bytes32
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal() failed: %v", err)
		}
		if back != b {
			t.Fatalf("round-trip mismatch: %v != %v", back, b)
		}
	})

	t.Run("binary values round-trip as hex", func(t *testing.T) {
		var b Bytes32
		b[0] = 0x01
		b[31] = 0xff

		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Marshal() failed: %v", err)
		}
		if !strings.HasPrefix(string(data), `"0x`) {
			t.Fatalf("binary value not hex encoded: %s", data)
		}

		var back Bytes32
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal() failed: %v", err)
		}
		if back != b {
			t.Fatalf("round-trip mismatch: %v != %v", back, b)
		}
	})

	t.Run("rejects oversized strings", func(t *testing.T) {
		var b Bytes32
		if err := b.UnmarshalText([]byte(strings.Repeat("a", 33))); err == nil {
			t.Fatal("expected error for 33-byte string")
		}
	})

	t.Run("rejects short hex", func(t *testing.T) {
		var b Bytes32
		if err := b.UnmarshalText([]byte("0x0102")); err == nil {
			t.Fatal("expected error for short hex")
		}
	})
}

func TestAddressMarshaling(t *testing.T) {
	a := testAddr(0xab)

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	want := `"0x` + strings.Repeat("ab", 32) + `"`
	if string(data) != want {
		t.Fatalf("marshaled = %s, want %s", data, want)
	}

	var back Address
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if back != a {
		t.Fatalf("round-trip mismatch")
	}

	var bad Address
	if err := bad.UnmarshalText([]byte("0x1234")); err == nil {
		t.Fatal("expected error for 2-byte address")
	}
	if err := bad.UnmarshalText([]byte("not-hex")); err == nil {
		t.Fatal("expected error for non-hex input")
	}
}
