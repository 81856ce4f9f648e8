package util

import (
	"testing"
)

func TestCompactToTarget(t *testing.T) {
	tests := []struct {
		name     string
		compact  uint32
		want     string // hex of magnitude
		negative bool
		overflow bool
	}{
		{name: "zero", compact: 0x00000000, want: "0x0"},
		{name: "exponent 0 drops mantissa", compact: 0x00123456, want: "0x0"},
		{name: "exponent 1 drops mantissa", compact: 0x01003456, want: "0x0"},
		{name: "exponent 2 drops mantissa", compact: 0x02000056, want: "0x0"},
		{name: "sign with zero word", compact: 0x01803456, want: "0x0"},
		{name: "exponent 1", compact: 0x01123456, want: "0x12"},
		{name: "exponent 1 negative", compact: 0x01fedcba, want: "0x7e", negative: true},
		{name: "exponent 2", compact: 0x02123456, want: "0x1234"},
		{name: "exponent 3", compact: 0x03123456, want: "0x123456"},
		{name: "exponent 4", compact: 0x04123456, want: "0x12345600"},
		{name: "exponent 4 negative", compact: 0x04923456, want: "0x12345600", negative: true},
		{name: "leading zero byte", compact: 0x05009234, want: "0x92340000"},
		{name: "florincoin genesis", compact: 0x1e0ffff0, want: "0xffff0000000000000000000000000000000000000000000000000000000"},
		{name: "largest exponent without overflow", compact: 0x22000001, want: "0x100000000000000000000000000000000000000000000000000000000000000"},
		{name: "exponent 35", compact: 0x23000001, want: "0x0", overflow: true},
		{name: "two byte word at 34", compact: 0x22000100, want: "0x0", overflow: true},
		{name: "three byte word at 33", compact: 0x21010000, want: "0x0", overflow: true},
		{name: "two byte word at 33", compact: 0x21000100, want: "0x100000000000000000000000000000000000000000000000000000000000000"},
		{name: "max exponent", compact: 0xff123456, want: "0x0", overflow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, negative, overflow := CompactToTarget(tt.compact)
			if got := target.Hex(); got != tt.want && !tt.overflow {
				t.Errorf("CompactToTarget(0x%08x) = %s, want %s", tt.compact, got, tt.want)
			}
			if negative != tt.negative {
				t.Errorf("CompactToTarget(0x%08x) negative = %v, want %v", tt.compact, negative, tt.negative)
			}
			if overflow != tt.overflow {
				t.Errorf("CompactToTarget(0x%08x) overflow = %v, want %v", tt.compact, overflow, tt.overflow)
			}
		})
	}
}

func TestTargetToCompact(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   uint32
	}{
		{name: "zero", target: "0", want: 0x00000000},
		{name: "one byte", target: "12", want: 0x01120000},
		{name: "sign bit moves exponent", target: "80", want: 0x02008000},
		{name: "two bytes", target: "1234", want: 0x02123400},
		{name: "three bytes", target: "123456", want: 0x03123456},
		{name: "truncates low bytes", target: "123456789a", want: 0x05123456},
		{name: "mainnet pow limit", target: "00000fffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", want: 0x1e0fffff},
		{name: "regtest pow limit", target: "7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", want: 0x207fffff},
		{name: "all ones", target: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", want: 0x2100ffff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetToCompact(MustHexToTarget(tt.target))
			if got != tt.want {
				t.Errorf("TargetToCompact(%s) = 0x%08x, want 0x%08x", tt.target, got, tt.want)
			}
		})
	}
}

func TestCanonicalCompact(t *testing.T) {
	tests := []struct {
		compact uint32
		want    uint32
	}{
		{0x01123456, 0x01120000},
		{0x01fedcba, 0x01fe0000},
		{0x02123456, 0x02123400},
		{0x04923456, 0x04923456},
		{0x05009234, 0x05009234},
		{0x04001234, 0x03123400},
		{0x1e0ffff0, 0x1e0ffff0},
		{0x00923456, 0x00000000},
	}

	for _, tt := range tests {
		if got := CanonicalCompact(tt.compact); got != tt.want {
			t.Errorf("CanonicalCompact(0x%08x) = 0x%08x, want 0x%08x", tt.compact, got, tt.want)
		}
	}
}

func TestCompactRoundTrip(t *testing.T) {
	// Every non-negative, non-overflowing encoding must survive
	// decode -> encode up to canonical form.
	for exponent := uint32(0); exponent <= 34; exponent++ {
		for _, mantissa := range []uint32{0x000001, 0x0000ff, 0x000100, 0x00ffff, 0x010000, 0x123456, 0x7fffff} {
			compact := exponent<<24 | mantissa
			target, negative, overflow := CompactToTarget(compact)
			if negative || overflow {
				continue
			}
			got := TargetToCompact(target)
			if want := CanonicalCompact(compact); got != want {
				t.Errorf("round trip 0x%08x: got 0x%08x, want 0x%08x", compact, got, want)
			}
			// Encoding is idempotent on its own output.
			again, _, _ := CompactToTarget(got)
			if TargetToCompact(again) != got {
				t.Errorf("encode not idempotent for 0x%08x", got)
			}
		}
	}
}

func TestValidTarget(t *testing.T) {
	limit := MustHexToTarget("00000fffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

	tests := []struct {
		name    string
		compact uint32
		valid   bool
	}{
		{"genesis bits", 0x1e0ffff0, true},
		{"limit bits", 0x1e0fffff, true},
		{"above limit", 0x1f00ffff, false},
		{"zero", 0x00000000, false},
		{"negative", 0x1d80ffff, false},
		{"overflow", 0x23000001, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ValidTarget(tt.compact, limit); ok != tt.valid {
				t.Errorf("ValidTarget(0x%08x) = %v, want %v", tt.compact, ok, tt.valid)
			}
		})
	}
}

func TestParseCompactHex(t *testing.T) {
	got, err := ParseCompactHex("0x1e0ffff0")
	if err != nil {
		t.Fatalf("ParseCompactHex: %v", err)
	}
	if got != 0x1e0ffff0 {
		t.Errorf("ParseCompactHex = 0x%08x, want 0x1e0ffff0", got)
	}
	if CompactToHex(got) != "1e0ffff0" {
		t.Errorf("CompactToHex = %s", CompactToHex(got))
	}

	for _, bad := range []string{"", "zz", "1234567890"} {
		if _, err := ParseCompactHex(bad); err == nil {
			t.Errorf("ParseCompactHex(%q) should fail", bad)
		}
	}
}

func TestHexToTarget(t *testing.T) {
	target, err := HexToTarget("00000000ffff0000000000000000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("HexToTarget: %v", err)
	}
	want, _, _ := CompactToTarget(0x1d00ffff)
	if !target.Eq(want) {
		t.Errorf("HexToTarget = %s, want %s", target.Hex(), want.Hex())
	}

	if _, err := HexToTarget("1" + "0000000000000000000000000000000000000000000000000000000000000000"); err == nil {
		t.Error("HexToTarget should reject values above 256 bits")
	}
	if _, err := HexToTarget("xyz"); err == nil {
		t.Error("HexToTarget should reject non-hex input")
	}
}
