// Package base62 maps link identifiers to short codes and back.
//
// The alphabet order is part of the persisted data: every stored short code was
// produced with it, so it must never change.
package base62

import (
	"errors"
	"math"
)

// Alphabet is the digit set: 0-9, then A-Z, then a-z.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = uint64(len(Alphabet))

// ErrInvalidCode is returned when a string is not a valid base62 numeral.
var ErrInvalidCode = errors.New("invalid short code")

// index maps a byte to its digit value, -1 for bytes outside the alphabet.
var index = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = int8(i)
	}
	return t
}()

// Encode converts n to its base62 representation, most significant digit first.
func Encode(n uint64) string {
	if n == 0 {
		return Alphabet[:1]
	}

	// 62^11 > 2^64, so eleven digits always suffice.
	var buf [11]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = Alphabet[n%base]
		n /= base
	}
	return string(buf[i:])
}

// Decode parses s as a base62 numeral.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, ErrInvalidCode
	}

	var n uint64
	for i := 0; i < len(s); i++ {
		d := index[s[i]]
		if d < 0 {
			return 0, ErrInvalidCode
		}
		if n > (math.MaxUint64-uint64(d))/base {
			return 0, ErrInvalidCode
		}
		n = n*base + uint64(d)
	}
	return n, nil
}

// Valid reports whether s decodes without error.
func Valid(s string) bool {
	_, err := Decode(s)
	return err == nil
}
