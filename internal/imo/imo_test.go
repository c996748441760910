package imo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    int
		want bool
	}{
		{name: "known vessel", n: 9872365, want: true},
		{name: "check digit off by one", n: 9872364, want: false},
		{name: "another known vessel", n: 9631814, want: true},
		{name: "too short", n: 123, want: false},
		{name: "too long", n: 12345678, want: false},
		{name: "zero", n: 0, want: false},
		{name: "negative", n: -9872365, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsValid(tt.n))
		})
	}
}

func TestIsValidMatchesChecksumEquation(t *testing.T) {
	t.Parallel()

	// Exhaustive over a slice of the range: IsValid must agree with the
	// direct digit-by-digit computation.
	for n := 1000000; n <= 1001000; n++ {
		digits := [7]int{}
		v := n
		for i := 6; i >= 0; i-- {
			digits[i] = v % 10
			v /= 10
		}
		sum := 0
		for i := 0; i < 6; i++ {
			sum += digits[i] * (7 - i)
		}
		want := sum%10 == digits[6]
		require.Equal(t, want, IsValid(n), "imo %d", n)
	}
}

func TestSequenceYieldsFullRange(t *testing.T) {
	t.Parallel()

	seq, err := NewSequence(1000000, 1000050)
	require.NoError(t, err)
	require.Equal(t, 51, seq.Remaining())

	var got []int
	for {
		n, ok := seq.Next()
		if !ok {
			break
		}
		got = append(got, n)
	}

	require.Len(t, got, 51)
	for i, n := range got {
		require.Equal(t, 1000000+i, n)
	}
	require.Equal(t, 0, seq.Remaining())

	_, ok := seq.Next()
	require.False(t, ok)
}

func TestSequenceNextBatch(t *testing.T) {
	t.Parallel()

	seq, err := NewSequence(1000000, 1000009)
	require.NoError(t, err)

	first := seq.NextBatch(4)
	require.Equal(t, []int{1000000, 1000001, 1000002, 1000003}, first)

	second := seq.NextBatch(4)
	require.Equal(t, []int{1000004, 1000005, 1000006, 1000007}, second)

	tail := seq.NextBatch(4)
	require.Equal(t, []int{1000008, 1000009}, tail)

	require.Nil(t, seq.NextBatch(4))
}

func TestNewSequenceRejectsBadBounds(t *testing.T) {
	t.Parallel()

	_, err := NewSequence(999999, 1000050)
	require.Error(t, err)

	_, err = NewSequence(1000000, 10000000)
	require.Error(t, err)

	_, err = NewSequence(2000000, 1000000)
	require.Error(t, err)
}
