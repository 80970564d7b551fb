// Package pix generates static Pix payment payloads (BR Code, the EMV QR
// format defined by the Brazilian central bank). The output is a plain text
// string a scanning app decodes into a pre-filled payment; no bank API is
// involved.
package pix

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field size limits from the BR Code specification.
const (
	maxKeyLen  = 77
	maxNameLen = 25
	maxCityLen = 15
	maxTxIDLen = 25
)

// Encoder produces static Pix payloads for one merchant. It holds only the
// merchant identity, never mutates it, and is safe for concurrent use.
type Encoder struct {
	key  string
	name string
	city string
}

// NewEncoder creates an encoder for the given merchant. The Pix key, display
// name and city are truncated to the limits the BR Code format allows.
func NewEncoder(key, name, city string) *Encoder {
	return &Encoder{
		key:  truncate(key, maxKeyLen),
		name: truncate(name, maxNameLen),
		city: truncate(city, maxCityLen),
	}
}

// Encode builds the complete payload for a charge of the given amount,
// tagged with txid so the payment can be correlated back to an order or tab
// settlement. Identical inputs always produce an identical string.
func (e *Encoder) Encode(amount decimal.Decimal, txid string) string {
	// Field 26: merchant account information (GUI + Pix key).
	account := tlv("26", tlv("00", "BR.GOV.BCB.PIX")+tlv("01", e.key))

	// Field 62: additional data (txid, max 25 chars, hyphens stripped).
	ref := truncate(strings.ReplaceAll(txid, "-", ""), maxTxIDLen)
	additional := tlv("62", tlv("05", ref))

	var b strings.Builder
	b.WriteString("000201")                         // payload format indicator
	b.WriteString("010212")                         // point of initiation: static
	b.WriteString(account)                          // merchant account info
	b.WriteString("52040000")                       // merchant category code
	b.WriteString("5303986")                        // currency: BRL (986)
	b.WriteString(tlv("54", amount.StringFixed(2))) // transaction amount
	b.WriteString("5802BR")                         // country code
	b.WriteString(tlv("59", e.name))                // merchant name
	b.WriteString(tlv("60", e.city))                // merchant city
	b.WriteString(additional)                       // reference label
	b.WriteString("6304")                           // CRC tag+length, value appended below

	// The CRC covers everything written so far, including the "6304".
	payload := b.String()
	return payload + crc16(payload)
}

// Verify recomputes the checksum of a payload and reports whether the final
// four digits match.
func Verify(payload string) bool {
	if len(payload) < 4 {
		return false
	}
	return crc16(payload[:len(payload)-4]) == payload[len(payload)-4:]
}

// tlv renders one Tag-Length-Value field: 2-digit tag, 2-digit decimal
// length, raw value bytes.
func tlv(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}

// crc16 computes CRC16-CCITT-FALSE (poly 0x1021, init 0xFFFF, no reflection)
// over the payload bytes and renders it as four uppercase hex digits.
func crc16(data string) string {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
