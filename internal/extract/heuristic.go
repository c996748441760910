package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/r-uben/baltic-shipping/internal/vessel"
)

// The registry's detail pages repeat the key attributes in the document
// title ("NAME, Type, IMO 1234567 | ...") and the meta description prose.
// These patterns recover a minimal record when both structured markup and
// the generative pass come up empty.
var (
	titlePattern   = regexp.MustCompile(`^([^,]+),\s*([^,]+),\s*IMO`)
	typePattern    = regexp.MustCompile(`(?i)is a\s+(\S+)`)
	yearPattern    = regexp.MustCompile(`(?i)built in\s+(\d{4})`)
	flagPattern    = regexp.MustCompile(`(?i)flag of\s+([^.]+)`)
	tonnagePattern = regexp.MustCompile(`(?i)gross tonnage is\s+([\d,]+)`)

	mmsiPattern    = regexp.MustCompile(`(?im)MMSI[:\s]+(\d{9})`)
	lengthPattern  = regexp.MustCompile(`(?im)Length[:\s]+([\d.]+)\s*(?:m|meters)?`)
	breadthPattern = regexp.MustCompile(`(?im)(?:Breadth|Beam)[:\s]+([\d.]+)\s*(?:m|meters)?`)
)

// HeuristicPass scrapes the title, meta description, and visible text with
// fixed patterns. Lowest confidence of the three passes; the merge rule
// keeps its values only where nothing better exists.
func HeuristicPass(body []byte) (Proposal, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Proposal{}, err
	}
	p := newProposal()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if m := titlePattern.FindStringSubmatch(title); m != nil {
		p.Fields[vessel.FieldName] = strings.TrimSpace(m[1])
		p.Fields[vessel.FieldType] = strings.TrimSpace(m[2])
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		desc = strings.TrimSpace(desc)
		if desc != "" {
			p.Fields[vessel.FieldDescription] = desc
			if _, seen := p.Fields[vessel.FieldType]; !seen {
				if m := typePattern.FindStringSubmatch(desc); m != nil {
					p.Fields[vessel.FieldType] = strings.TrimSpace(m[1])
				}
			}
			if m := yearPattern.FindStringSubmatch(desc); m != nil {
				p.Fields[vessel.FieldYearBuilt] = m[1]
			}
			if m := flagPattern.FindStringSubmatch(desc); m != nil {
				p.Fields[vessel.FieldFlag] = strings.TrimSpace(m[1])
			}
			if m := tonnagePattern.FindStringSubmatch(desc); m != nil {
				p.Fields[vessel.FieldGrossTonnage] = strings.ReplaceAll(m[1], ",", "")
			}
		}
	}

	text := doc.Text()
	for _, tp := range []struct {
		re    *regexp.Regexp
		field vessel.Field
	}{
		{mmsiPattern, vessel.FieldMMSI},
		{lengthPattern, vessel.FieldLength},
		{breadthPattern, vessel.FieldBreadth},
	} {
		if _, seen := p.Fields[tp.field]; seen {
			continue
		}
		if m := tp.re.FindStringSubmatch(text); m != nil {
			p.Fields[tp.field] = strings.TrimSpace(m[1])
		}
	}

	for f, v := range p.Fields {
		if vessel.IsPlaceholder(v) {
			delete(p.Fields, f)
		}
	}
	return p, nil
}
