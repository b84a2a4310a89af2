package press

import (
	"fmt"
	"strings"
)

// VisibleTo returns the subset of transcript the given power may see: every
// broadcast, plus anything it sent or received. Relative order is preserved
// (the transcript is assumed chronological). Pure function; safe to call
// concurrently against the same snapshot.
func VisibleTo(transcript []Message, power string) []Message {
	out := make([]Message, 0, len(transcript))
	for _, m := range transcript {
		if m.Recipient == Broadcast || m.Sender == power || m.Recipient == power {
			out = append(out, m)
		}
	}
	return out
}

// NegotiationDigest renders a power's direct negotiations for one phase as
// "To X: ..." / "From X: ..." lines, the shape the diary prompts expect.
// Broadcasts from other powers are not part of a power's own negotiation
// record and are excluded.
func NegotiationDigest(transcript []Message, power, phase string) string {
	var sb strings.Builder
	for _, m := range transcript {
		if m.Phase != phase {
			continue
		}
		switch {
		case m.Sender == power:
			fmt.Fprintf(&sb, "To %s: %s\n", m.Recipient, m.Content)
		case m.Recipient == power:
			fmt.Fprintf(&sb, "From %s: %s\n", m.Sender, m.Content)
		}
	}
	if sb.Len() == 0 {
		return "No negotiations this phase"
	}
	return sb.String()
}
