package perception

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Shape selects which structured payload the extractor recovers.
type Shape string

const (
	ShapeOrders   Shape = "orders"
	ShapeMessages Shape = "messages"
)

// blockStrategy is one way of locating a candidate payload block inside raw
// model output. Strategies are tried in order; the first hit wins, so earlier
// entries must be the more explicit markers and later ones the wide nets.
type blockStrategy struct {
	name string
	re   *regexp.Regexp
}

// tryExtract returns the captured block, or ok=false when the strategy does
// not apply to this text.
func (s blockStrategy) tryExtract(text string) (string, bool) {
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// orderStrategies is the cascade for the orders shape. Models are prompted to
// emit `PARSABLE OUTPUT: {...}` but routinely drop the colon, bold the
// marker, or bury the object in a code fence; the final entry accepts any
// bare object that at least carries the expected key.
var orderStrategies = []blockStrategy{
	{"marker", regexp.MustCompile(`PARSABLE OUTPUT:\s*(\{[\s\S]*\})`)},
	{"marker_bare", regexp.MustCompile(`(?s)PARSABLE OUTPUT\s*\{(.*?)\}\s*$`)},
	{"marker_bold", regexp.MustCompile(`(?s)\*\*PARSABLE OUTPUT:\*\*\s*(\{.*?\})`)},
	{"fence_json", regexp.MustCompile("(?s)```json\n(.*?)\n```")},
	{"fence_plain", regexp.MustCompile("(?s)```\n(.*?)\n```")},
	{"bare_object", regexp.MustCompile(`(?s)(\{[^{}]*"orders"\s*:\s*\[[^\]]*\][^{}]*\})`)},
}

// Extractor recovers structured payloads from raw model output. Malformed
// input is an expected outcome, never an error: every method reports a miss
// through its ok result and leaves propagation to genuine internal faults.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor returns an Extractor logging through log. A nil logger is
// replaced with a no-op one so the extractor stays usable as a pure function.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// ordersPayload is the wire shape expected inside an extracted block.
// Orders is a pointer so a decoded object without the key reads as a miss
// rather than an empty order set.
type ordersPayload struct {
	Orders *[]string `json:"orders"`
}

// Orders runs the extraction cascade for the orders shape. It returns the
// proposed order strings and ok=true, or ok=false when no strategy produced
// a decodable block.
func (e *Extractor) Orders(raw string) ([]string, bool) {
	var block string
	found := false
	for _, strat := range orderStrategies {
		if b, ok := strat.tryExtract(raw); ok {
			e.log.Debug("order block located", zap.String("strategy", strat.name))
			block = b
			found = true
			break
		}
		e.log.Debug("order strategy missed", zap.String("strategy", strat.name))
	}
	if !found {
		e.log.Debug("no order block found in response")
		return nil, false
	}
	return e.decodeOrders(ensureBraces(block))
}

// ensureBraces normalizes a captured block to a single brace-delimited
// object: doubled braces are stripped one level, and a braceless capture
// (from the bare-marker strategy) is wrapped.
func ensureBraces(block string) string {
	switch {
	case strings.HasPrefix(block, "{{"):
		return strings.TrimSpace(block[1 : len(block)-1])
	case strings.HasPrefix(block, "{"):
		return block
	default:
		return "{" + block + "}"
	}
}

// decodeOrders attempts the decode chain on a captured block: direct decode,
// then a trailing-comma/quote repair pass, then a comment-stripping pass,
// then the bracket fallback. Each stage runs only if the previous failed.
func (e *Extractor) decodeOrders(jsonText string) ([]string, bool) {
	var payload ordersPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err == nil {
		return ordersResult(payload)
	}

	repaired := normalizeQuotes(stripTrailingCommas(jsonText))
	if err := json.Unmarshal([]byte(repaired), &payload); err == nil {
		e.log.Warn("order block decoded after repair pass")
		return ordersResult(payload)
	}

	cleaned := stripTrailingCommas(stripLineComments(jsonText))
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		e.log.Warn("order block decoded after comment stripping")
		return ordersResult(payload)
	}

	if orders, ok := extractBracketList(jsonText); ok {
		e.log.Warn("order block recovered via bracket fallback")
		return orders, true
	}

	e.log.Warn("order block found but undecodable")
	return nil, false
}

// ordersResult maps a decoded payload to the extraction result. A decode
// that succeeded without the expected key is a miss, not an empty order set.
func ordersResult(p ordersPayload) ([]string, bool) {
	if p.Orders == nil {
		return nil, false
	}
	return *p.Orders, true
}
