package fetch

import (
	"bytes"
	"net/http"
	"strings"
)

// Outcome is the existence classification of a fetch result.
type Outcome int

// Classification results. SoftNotFound is NotFound-equivalent downstream but
// tracked separately: the page loaded yet carried no entity.
const (
	OutcomeNotFound Outcome = iota
	OutcomeSoftNotFound
	OutcomeExists
)

// String implements fmt.Stringer for logging and counters.
func (o Outcome) String() string {
	switch o {
	case OutcomeSoftNotFound:
		return "soft_not_found"
	case OutcomeExists:
		return "exists"
	default:
		return "not_found"
	}
}

// DefaultNotFoundPhrases are the negative-result signatures observed on the
// registry site. Case-insensitive substring match against the body.
func DefaultNotFoundPhrases() []string {
	return []string{
		"page not found",
		"error 404",
		"vessel not found",
		"no vessel",
		"vessel details not available",
	}
}

// DefaultMinBodyBytes is the empirical floor below which a 200 response is
// an error/template page rather than real content. Tunable via config.
const DefaultMinBodyBytes = 1500

// ClassifyRules holds the tunable thresholds for existence classification.
type ClassifyRules struct {
	MinBodyBytes    int
	NotFoundPhrases []string
}

// DefaultClassifyRules returns the rules matching the registry's behavior.
func DefaultClassifyRules() ClassifyRules {
	return ClassifyRules{
		MinBodyBytes:    DefaultMinBodyBytes,
		NotFoundPhrases: DefaultNotFoundPhrases(),
	}
}

// Classify decides whether the page represents an existing vessel. The
// status code is checked first (cheap, early exit); a 200 is then vetted
// against the negative-signature phrases and the minimum-length floor,
// because the site sometimes answers 200 for empty template pages.
func (r ClassifyRules) Classify(p Page) Outcome {
	if p.StatusCode < http.StatusOK || p.StatusCode >= http.StatusMultipleChoices {
		return OutcomeNotFound
	}
	lower := bytes.ToLower(p.Body)
	for _, phrase := range r.NotFoundPhrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		if bytes.Contains(lower, []byte(phrase)) {
			return OutcomeSoftNotFound
		}
	}
	if r.MinBodyBytes > 0 && len(p.Body) < r.MinBodyBytes {
		return OutcomeNotFound
	}
	return OutcomeExists
}
