package perception

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// MessageCandidate is one message-shaped value recovered from raw output,
// prior to structural validation. Fields are pointers so the validator can
// tell an absent field from an empty one. Sender and phase are supplied by
// caller context, never expected inside the block.
type MessageCandidate struct {
	MessageType *string `json:"message_type"`
	Content     *string `json:"content"`
	Recipient   *string `json:"recipient"`
}

var (
	doubleBraceRE = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)
	jsonFenceRE   = regexp.MustCompile("(?s)```json\n(.*?)\n```")
	braceBlockRE  = regexp.MustCompile(`(?s)\{.*?\}`)
)

// Messages runs the extraction cascade for the messages shape. Unlike the
// orders shape, candidate blocks may be many (one per message); each decodes
// independently, and a bad block is skipped rather than failing the rest.
// An empty slice means nothing usable was found, which is a normal outcome.
func (e *Extractor) Messages(raw string) []MessageCandidate {
	trimmed := strings.TrimSpace(raw)

	// A response that is already a clean JSON array needs no block hunting.
	if cands, ok := decodeCandidateArray(trimmed); ok {
		e.log.Debug("message response decoded as bare array", zap.Int("candidates", len(cands)))
		return cands
	}

	blocks := e.findMessageBlocks(raw)
	if len(blocks) == 0 {
		e.log.Debug("no message blocks found in response")
		return nil
	}

	out := make([]MessageCandidate, 0, len(blocks))
	for i, block := range blocks {
		cleaned := stripTrailingCommas(strings.TrimSpace(block))
		var cand MessageCandidate
		if err := json.Unmarshal([]byte(cleaned), &cand); err != nil {
			e.log.Warn("skipping undecodable message block",
				zap.Int("block", i),
				zap.Error(err))
			continue
		}
		out = append(out, cand)
	}
	return out
}

// findMessageBlocks locates candidate blocks for the messages shape:
// double-brace-wrapped blocks first, then a tagged fence holding an array or
// a single object, then bare brace-delimited substrings anywhere in the text.
func (e *Extractor) findMessageBlocks(raw string) []string {
	if wrapped := doubleBraceRE.FindAllStringSubmatch(raw, -1); len(wrapped) > 0 {
		e.log.Debug("message blocks located", zap.String("strategy", "double_brace"), zap.Int("count", len(wrapped)))
		blocks := make([]string, 0, len(wrapped))
		for _, m := range wrapped {
			blocks = append(blocks, "{"+strings.TrimSpace(m[1])+"}")
		}
		return blocks
	}

	if m := jsonFenceRE.FindStringSubmatch(raw); m != nil {
		body := strings.TrimSpace(m[1])
		if blocks, ok := splitFencedBody(body); ok {
			e.log.Debug("message blocks located", zap.String("strategy", "fenced"), zap.Int("count", len(blocks)))
			return blocks
		}
		// Fence contents would not decode as a whole; salvage individual
		// objects out of it.
		e.log.Debug("message blocks located", zap.String("strategy", "fenced_scatter"))
		return braceBlockRE.FindAllString(body, -1)
	}

	e.log.Debug("message blocks located", zap.String("strategy", "scatter"))
	return braceBlockRE.FindAllString(raw, -1)
}

// splitFencedBody decodes a fenced body as either an array of objects or one
// object, re-serializing each element to an independent block.
func splitFencedBody(body string) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err == nil {
		blocks := make([]string, 0, len(items))
		for _, item := range items {
			if isJSONObject(item) {
				blocks = append(blocks, string(item))
			}
		}
		return blocks, true
	}
	var obj json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err == nil && isJSONObject(obj) {
		return []string{string(obj)}, true
	}
	return nil, false
}

// decodeCandidateArray accepts a response that is already a JSON array,
// keeping only its object elements.
func decodeCandidateArray(text string) ([]MessageCandidate, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, false
	}
	out := make([]MessageCandidate, 0, len(items))
	for _, item := range items {
		if !isJSONObject(item) {
			continue
		}
		var cand MessageCandidate
		if err := json.Unmarshal(item, &cand); err != nil {
			continue
		}
		out = append(out, cand)
	}
	return out, true
}

// isJSONObject reports whether a raw value is a brace-delimited object.
func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '{'
		}
	}
	return false
}
