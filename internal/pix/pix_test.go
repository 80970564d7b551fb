package pix

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCRC16KnownValue(t *testing.T) {
	// Standard CCITT-FALSE check value.
	if got := crc16("123456789"); got != "29B1" {
		t.Errorf("crc16(123456789) = %s, want 29B1", got)
	}
}

func TestTLV(t *testing.T) {
	tests := []struct {
		tag, value, want string
	}{
		{"00", "BR.GOV.BCB.PIX", "0014BR.GOV.BCB.PIX"},
		{"54", "13.50", "540513.50"},
		{"59", "Restaurante", "5911Restaurante"},
		{"62", "", "6200"},
	}
	for _, tt := range tests {
		if got := tlv(tt.tag, tt.value); got != tt.want {
			t.Errorf("tlv(%s, %q) = %s, want %s", tt.tag, tt.value, got, tt.want)
		}
	}
}

func TestEncodeStructure(t *testing.T) {
	enc := NewEncoder("pix@example.com", "Restaurante", "Sao Paulo")
	payload := enc.Encode(decimal.RequireFromString("13.50"), "ORDER123")

	if !strings.HasPrefix(payload, "000201010212") {
		t.Errorf("payload does not start with format+initiation fields: %s", payload)
	}
	for _, part := range []string{
		"0014BR.GOV.BCB.PIX",
		"0115pix@example.com",
		"52040000",
		"5303986",
		"540513.50",
		"5802BR",
		"5911Restaurante",
		"6009Sao Paulo",
		"62120508ORDER123",
	} {
		if !strings.Contains(payload, part) {
			t.Errorf("payload missing %q: %s", part, payload)
		}
	}

	// The last four characters are the CRC over everything before them,
	// which itself ends with the "6304" tag+length.
	if !strings.Contains(payload[:len(payload)-4], "6304") {
		t.Errorf("payload missing CRC tag: %s", payload)
	}
	if !Verify(payload) {
		t.Errorf("payload CRC does not verify: %s", payload)
	}
	for _, c := range payload[len(payload)-4:] {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			t.Errorf("CRC suffix not uppercase hex: %s", payload[len(payload)-4:])
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	enc := NewEncoder("pix@example.com", "Restaurante", "Sao Paulo")
	amount := decimal.RequireFromString("42.00")

	first := enc.Encode(amount, "abc-123")
	for i := 0; i < 10; i++ {
		if got := enc.Encode(amount, "abc-123"); got != first {
			t.Fatalf("encode not deterministic: %s != %s", got, first)
		}
	}
}

func TestEncodeStripsHyphensFromTxID(t *testing.T) {
	enc := NewEncoder("pix@example.com", "Restaurante", "Sao Paulo")
	payload := enc.Encode(decimal.RequireFromString("5.00"), "a1b2-c3d4-e5f6")

	if strings.Contains(payload, "a1b2-c3d4") {
		t.Errorf("txid hyphens not stripped: %s", payload)
	}
	if !strings.Contains(payload, "0512a1b2c3d4e5f6") {
		t.Errorf("stripped txid not embedded: %s", payload)
	}
}

func TestEncodeTruncation(t *testing.T) {
	longKey := strings.Repeat("k", 100)
	longName := strings.Repeat("n", 40)
	longCity := strings.Repeat("c", 30)
	enc := NewEncoder(longKey, longName, longCity)
	payload := enc.Encode(decimal.RequireFromString("1.00"), strings.Repeat("t", 40))

	if !strings.Contains(payload, "0177"+strings.Repeat("k", 77)) {
		t.Errorf("key not truncated to 77 bytes: %s", payload)
	}
	if !strings.Contains(payload, "5925"+strings.Repeat("n", 25)) {
		t.Errorf("name not truncated to 25 bytes: %s", payload)
	}
	if !strings.Contains(payload, "6015"+strings.Repeat("c", 15)) {
		t.Errorf("city not truncated to 15 bytes: %s", payload)
	}
	if !strings.Contains(payload, "0525"+strings.Repeat("t", 25)) {
		t.Errorf("txid not truncated to 25 chars: %s", payload)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	enc := NewEncoder("pix@example.com", "Restaurante", "Sao Paulo")
	payload := enc.Encode(decimal.RequireFromString("13.50"), "ORDER123")

	tampered := strings.Replace(payload, "13.50", "13.51", 1)
	if Verify(tampered) {
		t.Error("Verify accepted a tampered amount")
	}
	if Verify("000") {
		t.Error("Verify accepted a too-short payload")
	}
}

func TestAmountAlwaysTwoDecimals(t *testing.T) {
	enc := NewEncoder("pix@example.com", "Restaurante", "Sao Paulo")

	tests := []struct {
		amount string
		want   string
	}{
		{"13.5", "540513.50"},
		{"20", "540520.00"},
		{"0.07", "54040.07"},
		{"1234.56", "54071234.56"},
	}
	for _, tt := range tests {
		payload := enc.Encode(decimal.RequireFromString(tt.amount), "TX1")
		if !strings.Contains(payload, tt.want) {
			t.Errorf("amount %s: payload missing %q: %s", tt.amount, tt.want, payload)
		}
	}
}
