package vessel

import "strings"

// DefaultNegativePhrases are substrings marking a value as a stated absence
// rather than data ("Flag: not specified"). The set is configurable because
// different model backends phrase the absence differently.
func DefaultNegativePhrases() []string {
	return []string{
		"not specified",
		"not found",
		"not available",
		"unknown",
		"unspecified",
	}
}

// Merger applies the cross-pass merge rule to a record. Passes call Apply in
// precedence order (structured, then generative, then heuristic); per field
// the first real value wins, a strictly longer later value replaces it, and
// a negative-signal value never beats a substantive one in either direction.
type Merger struct {
	negatives []string
}

// NewMerger builds a Merger with the given negative-signal phrase set; nil
// falls back to DefaultNegativePhrases.
func NewMerger(negativePhrases []string) *Merger {
	if negativePhrases == nil {
		negativePhrases = DefaultNegativePhrases()
	}
	lowered := make([]string, 0, len(negativePhrases))
	for _, p := range negativePhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Merger{negatives: lowered}
}

// IsNegative reports whether v contains any negative-signal phrase.
func (m *Merger) IsNegative(v string) bool {
	lv := strings.ToLower(v)
	for _, p := range m.negatives {
		if strings.Contains(lv, p) {
			return true
		}
	}
	return false
}

// Apply merges value into the record under the canonical field f.
func (m *Merger) Apply(r *Record, f Field, value string) {
	value = strings.TrimSpace(value)
	if IsPlaceholder(value) {
		return
	}
	current, ok := r.Fields[f]
	if merged, take := m.pick(current, ok, value); take {
		r.Fields[f] = merged
	}
}

// ApplyOther merges value under an unmapped label in the Other bucket.
func (m *Merger) ApplyOther(r *Record, label, value string) {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)
	if label == "" || IsPlaceholder(value) {
		return
	}
	current, ok := r.Other[label]
	if merged, take := m.pick(current, ok, value); take {
		r.Other[label] = merged
	}
}

// pick decides whether incoming should replace current.
func (m *Merger) pick(current string, hasCurrent bool, incoming string) (string, bool) {
	if !hasCurrent {
		return incoming, true
	}
	curNeg, incNeg := m.IsNegative(current), m.IsNegative(incoming)
	switch {
	case curNeg && !incNeg:
		// A substantive value always displaces a stated absence.
		return incoming, true
	case incNeg:
		// A stated absence never displaces anything already present.
		return current, false
	case len(incoming) > len(current):
		// Longer text is treated as the more complete capture.
		return incoming, true
	default:
		return current, false
	}
}
