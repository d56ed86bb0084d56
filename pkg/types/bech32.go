package types

import (
	"strings"
)

// Bech32 charset used for encoding (BIP-173).
const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Bech32MaxLength is the longest bech32 string accepted by Bech32Decode.
const Bech32MaxLength = 90

// bech32ChecksumLength is the number of checksum symbols appended to the data.
const bech32ChecksumLength = 6

// bech32CharsetRev maps bech32 characters to their 5-bit values. -1 = invalid.
var bech32CharsetRev [128]int8

func init() {
	for i := range bech32CharsetRev {
		bech32CharsetRev[i] = -1
	}
	for i, c := range bech32Charset {
		bech32CharsetRev[c] = int8(i)
	}
}

// Bech32Encode encodes a human-readable part and 5-bit groups into a bech32
// string. The HRP is lowercased; values must already be 5-bit (see ConvertBits).
func Bech32Encode(hrp string, values []byte) (string, error) {
	hrp = strings.ToLower(hrp)
	for i, v := range values {
		if v >= 32 {
			return "", addrErr(InvalidCharacters, "value %d at position %d is not a 5-bit group", v, i)
		}
	}

	chk := bech32CreateChecksum(hrp, values)

	// Build result: hrp + "1" + data + checksum
	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(values) + bech32ChecksumLength)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, b := range values {
		sb.WriteByte(bech32Charset[b])
	}
	for _, b := range chk {
		sb.WriteByte(bech32Charset[b])
	}
	return sb.String(), nil
}

// Bech32Decode decodes a bech32 string into its human-readable part and the
// 5-bit data groups, with the 6 checksum groups stripped.
func Bech32Decode(s string) (string, []byte, error) {
	if len(s) > Bech32MaxLength {
		return "", nil, addrErr(InvalidLength, "%d characters, max %d", len(s), Bech32MaxLength)
	}

	hasUpper := false
	hasLower := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 33 || c > 126 {
			return "", nil, addrErr(InvalidCharacters, "byte 0x%02x at position %d", c, i)
		}
		if c >= 'A' && c <= 'Z' {
			hasUpper = true
		}
		if c >= 'a' && c <= 'z' {
			hasLower = true
		}
	}
	if hasUpper && hasLower {
		return "", nil, addrErr(InconsistentCasing, "mixed upper and lower case")
	}

	// Work in lowercase.
	s = strings.ToLower(s)

	// Find the last '1' separator.
	sepIdx := strings.LastIndexByte(s, '1')
	if sepIdx < 1 {
		return "", nil, addrErr(MissingHrp, "no separator before data part")
	}
	if sepIdx+1+bech32ChecksumLength > len(s) {
		return "", nil, addrErr(MissingHrp, "data part shorter than checksum")
	}

	hrp := s[:sepIdx]
	dataStr := s[sepIdx+1:]

	data5 := make([]byte, len(dataStr))
	for i := 0; i < len(dataStr); i++ {
		val := bech32CharsetRev[dataStr[i]]
		if val < 0 {
			return "", nil, addrErr(InvalidCharacters, "%q is not in the bech32 charset", dataStr[i])
		}
		data5[i] = byte(val)
	}

	if !bech32VerifyChecksum(hrp, data5) {
		return "", nil, addrErr(InvalidChecksum, "%s", s)
	}

	return hrp, data5[:len(data5)-bech32ChecksumLength], nil
}

// bech32Polymod computes the bech32 polynomial modulus.
func bech32Polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

// bech32HRPExpand expands the HRP for checksum computation.
func bech32HRPExpand(hrp string) []byte {
	ret := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		ret = append(ret, (hrp[i]&0x7f)>>5)
	}
	ret = append(ret, 0)
	for i := 0; i < len(hrp); i++ {
		ret = append(ret, hrp[i]&31)
	}
	return ret
}

// bech32CreateChecksum creates a 6-symbol checksum for the given HRP and data.
func bech32CreateChecksum(hrp string, data []byte) []byte {
	values := append(bech32HRPExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	polymod := bech32Polymod(values) ^ 1
	ret := make([]byte, bech32ChecksumLength)
	for i := 0; i < bech32ChecksumLength; i++ {
		ret[i] = byte((polymod >> uint(5*(5-i))) & 31)
	}
	return ret
}

// bech32VerifyChecksum verifies the checksum of the given HRP and data (including checksum).
func bech32VerifyChecksum(hrp string, data []byte) bool {
	return bech32Polymod(append(bech32HRPExpand(hrp), data...)) == 1
}

// ConvertBits regroups a sequence of fromBits-wide units into toBits-wide
// units. With pad, a trailing partial group is zero-padded; without pad,
// leftover bits must be fewer than fromBits and all zero.
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, addrErr(CannotConvertBits, "unsupported widths %d->%d", fromBits, toBits)
	}

	acc := uint32(0)
	bits := uint(0)
	maxv := uint32(1)<<toBits - 1
	maxAcc := uint32(1)<<(fromBits+toBits-1) - 1
	ret := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)

	for i, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, addrErr(CannotConvertBits, "unit 0x%02x at position %d exceeds %d bits", b, i, fromBits)
		}
		acc = (acc<<fromBits | uint32(b)) & maxAcc
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			ret = append(ret, byte((acc>>bits)&maxv))
		}
	}

	if pad {
		if bits > 0 {
			ret = append(ret, byte((acc<<(toBits-bits))&maxv))
		}
	} else {
		if bits >= fromBits {
			return nil, addrErr(CannotConvertBits, "%d leftover bits", bits)
		}
		if (acc<<(toBits-bits))&maxv != 0 {
			return nil, addrErr(CannotConvertBits, "non-zero padding")
		}
	}

	return ret, nil
}
