package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/r-uben/baltic-shipping/internal/vessel"
)

// labelRule maps a page label onto a canonical field. Matching is
// case-insensitive substring, so specific labels must come before the
// generic ones that would shadow them ("engine model" before "engine",
// "imo number" before "imo").
type labelRule struct {
	label string
	field vessel.Field
}

var labelRules = []labelRule{
	{"imo number", vessel.FieldIMO},
	{"name of the ship", vessel.FieldName},
	{"vessel name", vessel.FieldName},
	{"ship name", vessel.FieldName},
	{"call sign", vessel.FieldCallSign},
	{"gross tonnage", vessel.FieldGrossTonnage},
	{"net tonnage", vessel.FieldNetTonnage},
	{"deadweight", vessel.FieldDeadweight},
	{"dwt", vessel.FieldDeadweight},
	{"year built", vessel.FieldYearBuilt},
	{"year of build", vessel.FieldYearBuilt},
	{"builder", vessel.FieldBuilder},
	{"shipyard", vessel.FieldBuilder},
	{"built", vessel.FieldYearBuilt},
	{"home port", vessel.FieldHomePort},
	{"port of registry", vessel.FieldHomePort},
	{"engine model", vessel.FieldEngineModel},
	{"engine power", vessel.FieldEnginePower},
	{"main engine", vessel.FieldEngineType},
	{"engine type", vessel.FieldEngineType},
	{"engine", vessel.FieldEngineType},
	{"power", vessel.FieldEnginePower},
	{"vessel type", vessel.FieldType},
	{"type of ship", vessel.FieldType},
	{"length", vessel.FieldLength},
	{"loa", vessel.FieldLength},
	{"breadth", vessel.FieldBreadth},
	{"beam", vessel.FieldBreadth},
	{"draught", vessel.FieldDraft},
	{"draft", vessel.FieldDraft},
	{"depth", vessel.FieldDepth},
	{"speed", vessel.FieldSpeed},
	{"owner", vessel.FieldOwner},
	{"manager", vessel.FieldManager},
	{"operator", vessel.FieldOperator},
	{"yard", vessel.FieldBuilder},
	{"status", vessel.FieldStatus},
	{"description", vessel.FieldDescription},
	{"flag", vessel.FieldFlag},
	{"mmsi", vessel.FieldMMSI},
	{"eni", vessel.FieldENI},
	{"imo", vessel.FieldIMO},
	{"type", vessel.FieldType},
}

// Labels that belong to page chrome rather than vessel data. Rows carrying
// these are dropped entirely instead of landing in the Other bucket.
var junkLabels = []string{
	"clear all",
	"search",
	"close",
	"vessel mlc insurance",
	"seafarers worked on",
	"open vacancies on",
}

// Proposal is the output of one extraction pass, not yet merged.
type Proposal struct {
	Fields map[vessel.Field]string
	Other  map[string]string
}

func newProposal() Proposal {
	return Proposal{
		Fields: make(map[vessel.Field]string),
		Other:  make(map[string]string),
	}
}

func (p Proposal) empty() bool {
	return len(p.Fields) == 0 && len(p.Other) == 0
}

func (p Proposal) set(label, value string) {
	label = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), ":"))
	value = strings.TrimSpace(value)
	if label == "" || vessel.IsPlaceholder(value) {
		return
	}
	lower := strings.ToLower(label)
	for _, junk := range junkLabels {
		if strings.Contains(lower, junk) {
			return
		}
	}
	for _, rule := range labelRules {
		if strings.Contains(lower, rule.label) {
			if _, seen := p.Fields[rule.field]; !seen {
				p.Fields[rule.field] = value
			}
			return
		}
	}
	if key := snakeCase(label); key != "" {
		if _, seen := p.Other[key]; !seen {
			p.Other[key] = value
		}
	}
}

var nonWord = regexp.MustCompile(`[^\w]+`)

func snakeCase(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	key = nonWord.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

// StructuredPass walks the document's label-value markup: table rows with a
// header-plus-value cell pair, plain two-cell rows, and definition lists.
// This is the highest-confidence pass because the site's own labels drive
// the mapping.
func StructuredPass(body []byte) (Proposal, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Proposal{}, err
	}
	p := newProposal()

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		cells := row.Find("td")
		switch {
		case th.Length() == 1 && cells.Length() >= 1:
			p.set(th.Text(), cells.First().Text())
		case cells.Length() >= 2:
			p.set(cells.Eq(0).Text(), cells.Eq(1).Text())
		}
	})

	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		terms := dl.Find("dt")
		values := dl.Find("dd")
		if terms.Length() != values.Length() {
			return
		}
		terms.Each(func(i int, dt *goquery.Selection) {
			p.set(dt.Text(), values.Eq(i).Text())
		})
	})

	return p, nil
}
