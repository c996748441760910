package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/r-uben/baltic-shipping/internal/genai"
	"github.com/r-uben/baltic-shipping/internal/metrics"
	"github.com/r-uben/baltic-shipping/internal/retry"
	"github.com/r-uben/baltic-shipping/internal/vessel"
)

// excerptLimit caps the HTML handed to the model. The detail table fits
// comfortably; anything longer is navigation and footer noise that only
// burns context.
const excerptLimit = 5000

// GenerativePass extracts fields by prompting a language model with the
// page's detail table. It tolerates reasoning-style output where the JSON
// answer is buried in thinking text.
type GenerativePass struct {
	gen    genai.Generator
	policy *retry.Policy
	logger *zap.Logger
}

// NewGenerativePass wires a generator into the pass. policy gates retries
// on malformed model output, not transport errors (the generator owns
// those).
func NewGenerativePass(gen genai.Generator, policy *retry.Policy, logger *zap.Logger) *GenerativePass {
	if policy == nil {
		policy = retry.DefaultPolicy()
	}
	return &GenerativePass{gen: gen, policy: policy, logger: logger}
}

// Extract runs the model over the page excerpt and parses the answer.
func (g *GenerativePass) Extract(ctx context.Context, imo int, body []byte) (Proposal, error) {
	prompt := buildPrompt(Excerpt(body))

	var proposal Proposal
	err := retry.Do(ctx, g.policy, func(ctx context.Context) error {
		raw, err := g.gen.Generate(ctx, prompt)
		if err != nil {
			metrics.GenerativeCalls.WithLabelValues("error").Inc()
			return err
		}
		metrics.GenerativeCalls.WithLabelValues("ok").Inc()
		p, err := parseModelOutput(raw)
		if err != nil {
			g.logger.Debug("model output unparseable, retrying",
				zap.Int("imo", imo),
				zap.Error(err),
			)
			return err
		}
		proposal = p
		return nil
	})
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

// Excerpt isolates the part of the page worth prompting with: the first
// detail table if present, otherwise the main content block, otherwise a
// slice past the header boilerplate.
func Excerpt(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		table := doc.Find("table.ship-info").First()
		if table.Length() == 0 {
			table = doc.Find("table").First()
		}
		if table.Length() > 0 {
			if html, err := goquery.OuterHtml(table); err == nil && html != "" {
				return clip(html, excerptLimit)
			}
		}
		main := doc.Find("main").First()
		if main.Length() == 0 {
			main = doc.Find("div.content").First()
		}
		if main.Length() > 0 {
			if html, err := goquery.OuterHtml(main); err == nil && html != "" {
				return clip(html, excerptLimit)
			}
		}
	}
	// No recognizable structure: skip the boilerplate head and take the
	// middle of the document.
	s := string(body)
	if len(s) > 2000 {
		s = s[2000:]
	}
	return clip(s, excerptLimit)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func buildPrompt(excerpt string) string {
	var b strings.Builder
	b.WriteString("Extract ALL vessel information from the HTML below and return it as a single flat JSON object.\n\n")
	b.WriteString("Use these keys where the data is present:\n")
	for _, f := range vessel.Fields() {
		// Prompt with the bare attribute name; category prefixes confuse
		// smaller models.
		name := string(f)
		if i := strings.IndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString("\nInclude ANY other labelled value you find under its own snake_case key. ")
	b.WriteString("Omit keys with no value. Do not invent values.\n\nHTML:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nComplete JSON:")
	return b.String()
}

// Reasoning models wrap the answer in thinking text. These strategies are
// tried in order; each captures the candidate JSON object.
var jsonStrategies = []*regexp.Regexp{
	regexp.MustCompile("(?is)```(?:json)?\\s*(\\{.*?\\})\\s*```"),
	regexp.MustCompile(`(?is)(?:final answer|answer|output|result|json response|output json|the json is|here is the json|json output):\s*(\{.*?\})`),
	regexp.MustCompile(`(?is)</think(?:ing)?>\s*(\{.*?\})`),
}

// balancedObject matches a JSON object with at most one level of nesting;
// findall-last picks the object closest to the end of the output.
var balancedObject = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

var (
	trailingCommaObj = regexp.MustCompile(`,\s*}`)
	trailingCommaArr = regexp.MustCompile(`,\s*]`)
)

// locateJSON digs the JSON answer out of raw model output.
func locateJSON(text string) (string, bool) {
	for _, re := range jsonStrategies {
		if ms := re.FindAllStringSubmatch(text, -1); len(ms) > 0 {
			return ms[len(ms)-1][1], true
		}
	}
	if ms := balancedObject.FindAllString(text, -1); len(ms) > 0 {
		return ms[len(ms)-1], true
	}
	start := strings.LastIndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1], true
	}
	return "", false
}

func parseModelOutput(raw string) (Proposal, error) {
	candidate, ok := locateJSON(raw)
	if !ok {
		return Proposal{}, fmt.Errorf("no JSON object in model output")
	}
	candidate = trailingCommaObj.ReplaceAllString(candidate, "}")
	candidate = trailingCommaArr.ReplaceAllString(candidate, "]")

	var decoded map[string]any
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return Proposal{}, fmt.Errorf("decode model JSON: %w", err)
	}

	p := newProposal()
	for key, val := range decoded {
		value, ok := stringify(val)
		if !ok || vessel.IsPlaceholder(value) {
			continue
		}
		key = snakeCase(key)
		if _, skip := skippedModelKeys[key]; skip {
			continue
		}
		if field, ok := modelKeyAliases[key]; ok {
			if _, seen := p.Fields[field]; !seen {
				p.Fields[field] = value
			}
			continue
		}
		if _, seen := p.Other[key]; !seen {
			p.Other[key] = value
		}
	}
	return p, nil
}

// stringify flattens scalar JSON values; nested structures are dropped
// rather than serialized into a field.
func stringify(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Provenance the pipeline stamps itself; model echoes are discarded.
var skippedModelKeys = map[string]struct{}{
	"scraped_at":        {},
	"extracted_at":      {},
	"source_url":        {},
	"extraction_method": {},
	"error":             {},
}

var modelKeyAliases = map[string]vessel.Field{
	"imo":              vessel.FieldIMO,
	"imo_number":       vessel.FieldIMO,
	"mmsi":             vessel.FieldMMSI,
	"name":             vessel.FieldName,
	"vessel_name":      vessel.FieldName,
	"ship_name":        vessel.FieldName,
	"name_of_the_ship": vessel.FieldName,
	"call_sign":        vessel.FieldCallSign,
	"callsign":         vessel.FieldCallSign,
	"flag":             vessel.FieldFlag,
	"eni":              vessel.FieldENI,
	"eni_number":       vessel.FieldENI,
	"vessel_type":      vessel.FieldType,
	"ship_type":        vessel.FieldType,
	"type":             vessel.FieldType,
	"year_built":       vessel.FieldYearBuilt,
	"built_year":       vessel.FieldYearBuilt,
	"year_of_build":    vessel.FieldYearBuilt,
	"built":            vessel.FieldYearBuilt,
	"gross_tonnage":    vessel.FieldGrossTonnage,
	"gt":               vessel.FieldGrossTonnage,
	"deadweight":       vessel.FieldDeadweight,
	"dwt":              vessel.FieldDeadweight,
	"net_tonnage":      vessel.FieldNetTonnage,
	"status":           vessel.FieldStatus,
	"vessel_status":    vessel.FieldStatus,
	"operating_status": vessel.FieldStatus,
	"length":           vessel.FieldLength,
	"loa":              vessel.FieldLength,
	"length_overall":   vessel.FieldLength,
	"breadth":          vessel.FieldBreadth,
	"beam":             vessel.FieldBreadth,
	"draft":            vessel.FieldDraft,
	"draught":          vessel.FieldDraft,
	"depth":            vessel.FieldDepth,
	"engine_type":      vessel.FieldEngineType,
	"engine":           vessel.FieldEngineType,
	"main_engine":      vessel.FieldEngineType,
	"engine_model":     vessel.FieldEngineModel,
	"engine_power":     vessel.FieldEnginePower,
	"power":            vessel.FieldEnginePower,
	"speed":            vessel.FieldSpeed,
	"owner":            vessel.FieldOwner,
	"manager":          vessel.FieldManager,
	"operator":         vessel.FieldOperator,
	"builder":          vessel.FieldBuilder,
	"shipyard":         vessel.FieldBuilder,
	"yard":             vessel.FieldBuilder,
	"home_port":        vessel.FieldHomePort,
	"homeport":         vessel.FieldHomePort,
	"port_of_registry": vessel.FieldHomePort,
	"description":      vessel.FieldDescription,
}
