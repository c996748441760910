// Package imo implements IMO number validation and candidate enumeration.
//
// An IMO number is a seven digit vessel identifier whose last digit is a
// mod-10 check digit. Validating candidates locally rejects roughly 90% of a
// dense integer range before any network traffic happens, so IsValid is the
// first filter in the scan pipeline and must stay allocation-free.
package imo

import "fmt"

// Digits is the exact number of decimal digits in a well-formed IMO number.
const Digits = 7

// Min and Max bound the seven digit space.
const (
	Min = 1000000
	Max = 9999999
)

// IsValid reports whether n is a well-formed IMO number: exactly seven
// decimal digits where the seventh equals the weighted sum of the first six
// (weights 7..2) modulo 10. Malformed input returns false, never an error.
func IsValid(n int) bool {
	if n < Min || n > Max {
		return false
	}
	check := n % 10
	rest := n / 10
	sum := 0
	for weight := 2; weight <= 7; weight++ {
		sum += (rest % 10) * weight
		rest /= 10
	}
	return sum%10 == check
}

// Sequence yields an ascending, inclusive range of candidate numbers. It
// holds no persistent state; resuming a run means constructing a new
// Sequence from the externally stored cursor.
type Sequence struct {
	next int
	end  int
}

// NewSequence builds a Sequence over [start, end]. Bounds outside the seven
// digit space are rejected so a typo cannot silently scan nothing.
func NewSequence(start, end int) (*Sequence, error) {
	if start < Min || end > Max {
		return nil, fmt.Errorf("imo range [%d, %d] outside [%d, %d]", start, end, Min, Max)
	}
	if start > end {
		return nil, fmt.Errorf("imo range start %d after end %d", start, end)
	}
	return &Sequence{next: start, end: end}, nil
}

// Next returns the next candidate and true, or zero and false once the
// sequence is exhausted.
func (s *Sequence) Next() (int, bool) {
	if s.next > s.end {
		return 0, false
	}
	n := s.next
	s.next++
	return n, true
}

// NextBatch returns up to size candidates, advancing the sequence. An empty
// slice means the sequence is exhausted.
func (s *Sequence) NextBatch(size int) []int {
	if size <= 0 || s.next > s.end {
		return nil
	}
	batch := make([]int, 0, size)
	for len(batch) < size {
		n, ok := s.Next()
		if !ok {
			break
		}
		batch = append(batch, n)
	}
	return batch
}

// Remaining reports how many candidates the sequence will still yield.
func (s *Sequence) Remaining() int {
	if s.next > s.end {
		return 0
	}
	return s.end - s.next + 1
}
