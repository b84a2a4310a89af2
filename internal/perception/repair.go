package perception

import (
	"regexp"
	"strings"
)

// trailingCommaRE matches a comma that directly precedes a closing brace or
// bracket, the single most common malformation in model-emitted JSON.
var trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)

// stripTrailingCommas removes commas immediately before closing delimiters.
func stripTrailingCommas(s string) string {
	return trailingCommaRE.ReplaceAllString(s, "$1")
}

// normalizeQuotes rewrites single quotes to double quotes. Crude on purpose:
// it mirrors the repair pass tolerance, and runs only after a clean decode
// has already failed.
func normalizeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

// stripLineComments removes //-style comments from each line while respecting
// quoted-string boundaries: a // inside an open double-quoted string is
// content, not a comment. Backslash escapes inside strings are honored.
// Block comments are not handled.
func stripLineComments(s string) string {
	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		commentPos := -1
		inQuotes := false
		escaped := false
		for i := 0; i < len(line); i++ {
			if escaped {
				escaped = false
				continue
			}
			switch line[i] {
			case '\\':
				escaped = true
			case '"':
				inQuotes = !inQuotes
			case '/':
				if !inQuotes && i+1 < len(line) && line[i+1] == '/' {
					commentPos = i
				}
			}
			if commentPos >= 0 {
				break
			}
		}
		if commentPos >= 0 {
			line = strings.TrimRight(line[:commentPos], " \t")
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

// bracketListRE locates an "orders": [...] fragment even when the enclosing
// object is too broken to decode.
var bracketListRE = regexp.MustCompile(`(?s)["']orders["']\s*:\s*\[([^\]]*)\]`)

// extractBracketList pulls the raw list body out of an undecodable block and
// parses it leniently. Last resort before declaring an extraction miss.
func extractBracketList(jsonText string) ([]string, bool) {
	m := bracketListRE.FindStringSubmatch(jsonText)
	if m == nil {
		return nil, false
	}
	return parseLenientStringList(m[1])
}

// parseLenientStringList scans a comma-separated sequence of quoted strings,
// accepting single or double quotes and trailing commas. Anything that is not
// a quoted string or separator fails the whole parse: this is a narrow
// grammar, not an expression evaluator.
func parseLenientStringList(body string) ([]string, bool) {
	out := []string{}
	i := 0
	n := len(body)
	for {
		for i < n && (body[i] == ' ' || body[i] == '\t' || body[i] == '\n' || body[i] == '\r') {
			i++
		}
		if i >= n {
			return out, true
		}
		quote := body[i]
		if quote != '"' && quote != '\'' {
			return nil, false
		}
		i++
		var sb strings.Builder
		closed := false
		for i < n {
			c := body[i]
			if c == '\\' && i+1 < n {
				sb.WriteByte(body[i+1])
				i += 2
				continue
			}
			if c == quote {
				closed = true
				i++
				break
			}
			sb.WriteByte(c)
			i++
		}
		if !closed {
			return nil, false
		}
		out = append(out, sb.String())
		for i < n && (body[i] == ' ' || body[i] == '\t' || body[i] == '\n' || body[i] == '\r') {
			i++
		}
		if i < n {
			if body[i] != ',' {
				return nil, false
			}
			i++
		}
	}
}
