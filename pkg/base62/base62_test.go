package base62

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownValues(t *testing.T) {
	cases := map[uint64]string{
		0:    "0",
		9:    "9",
		10:   "A",
		35:   "Z",
		36:   "a",
		61:   "z",
		62:   "10",
		3843: "zz",
		3844: "100",
	}
	for n, want := range cases {
		assert.Equal(t, want, Encode(n), "Encode(%d)", n)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 61, 62, 63, 1000, 123456789, 1 << 40, math.MaxUint64 - 1, math.MaxUint64}
	for _, n := range values {
		got, err := Decode(Encode(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	for n := uint64(0); n < 10000; n++ {
		got, err := Decode(Encode(n))
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestEncode_Injective(t *testing.T) {
	seen := make(map[string]uint64, 20000)
	for n := uint64(0); n < 20000; n++ {
		code := Encode(n)
		prev, dup := seen[code]
		require.False(t, dup, "code %q produced by %d and %d", code, prev, n)
		seen[code] = n
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := Decode("")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("outside_alphabet", func(t *testing.T) {
		for _, s := range []string{"ab-c", "a b", "é", "abc!", "_"} {
			_, err := Decode(s)
			assert.ErrorIs(t, err, ErrInvalidCode, s)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := Decode(Encode(math.MaxUint64) + "0")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	assert.False(t, Valid("not/valid"))
	assert.True(t, Valid("Zz9"))
}
