package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID returns a 26-character ULID: 48 bits of millisecond timestamp
// followed by 80 random bits, Crockford Base32 encoded. IDs sort
// lexicographically by creation time.
func NewULID() string {
	return newULIDAt(time.Now())
}

// ULIDTime extracts the creation time encoded in a ULID.
func ULIDTime(s string) (time.Time, bool) {
	if len(s) != 26 {
		return time.Time{}, false
	}
	var ms uint64
	for i := range 10 {
		v := decodeChar(s[i])
		if v < 0 {
			return time.Time{}, false
		}
		ms = ms<<5 | uint64(v)
	}
	return time.UnixMilli(int64(ms)), true
}

func newULIDAt(t time.Time) string {
	ms := uint64(t.UnixMilli())

	random := make([]byte, 10)
	if _, err := rand.Read(random); err != nil {
		binary.BigEndian.PutUint64(random[:8], uint64(time.Now().UnixNano()))
	}

	var out [26]byte
	for i := range 10 {
		out[9-i] = crockfordBase32[(ms>>(5*i))&0x1F]
	}

	var acc uint32
	bits, pos := 0, 10
	for _, b := range random {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = crockfordBase32[(acc>>bits)&0x1F]
			pos++
		}
	}

	return string(out[:])
}

func decodeChar(c byte) int {
	for i := range len(crockfordBase32) {
		if crockfordBase32[i] == c {
			return i
		}
	}
	return -1
}
