package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	rules := DefaultClassifyRules()
	ample := strings.Repeat("<tr><th>Flag</th><td>Panama</td></tr>", 100)

	tests := []struct {
		name string
		page Page
		want Outcome
	}{
		{
			name: "transport 404",
			page: Page{StatusCode: 404, Body: []byte(ample)},
			want: OutcomeNotFound,
		},
		{
			name: "server error",
			page: Page{StatusCode: 503, Body: []byte(ample)},
			want: OutcomeNotFound,
		},
		{
			name: "200 below length floor",
			page: Page{StatusCode: 200, Body: []byte("<html></html>")},
			want: OutcomeNotFound,
		},
		{
			name: "200 with negative signature",
			page: Page{StatusCode: 200, Body: []byte("<html>" + ample + " Vessel Not Found </html>")},
			want: OutcomeSoftNotFound,
		},
		{
			name: "200 ample body",
			page: Page{StatusCode: 200, Body: []byte(ample)},
			want: OutcomeExists,
		},
		{
			name: "zero status from transport failure",
			page: Page{StatusCode: 0},
			want: OutcomeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rules.Classify(tt.page))
		})
	}
}

func TestClassifyTunableFloor(t *testing.T) {
	t.Parallel()

	rules := ClassifyRules{MinBodyBytes: 10, NotFoundPhrases: DefaultNotFoundPhrases()}
	require.Equal(t, OutcomeExists, rules.Classify(Page{StatusCode: 200, Body: []byte("twelve bytes")}))

	rules.MinBodyBytes = 0
	require.Equal(t, OutcomeExists, rules.Classify(Page{StatusCode: 200, Body: []byte("x")}))
}

func TestClassifyCustomPhrases(t *testing.T) {
	t.Parallel()

	rules := ClassifyRules{
		MinBodyBytes:    4,
		NotFoundPhrases: []string{"NO MATCHING RECORD"},
	}
	page := Page{StatusCode: 200, Body: []byte("sorry, no matching record here")}
	require.Equal(t, OutcomeSoftNotFound, rules.Classify(page))
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "not_found", OutcomeNotFound.String())
	require.Equal(t, "soft_not_found", OutcomeSoftNotFound.String())
	require.Equal(t, "exists", OutcomeExists.String())
}
