// Package press models the negotiation traffic between powers: validating
// message candidates recovered from model output, filtering the shared
// transcript down to what one power may see, and storing accepted messages.
package press

import (
	"time"

	"diplomat/internal/perception"
	"go.uber.org/zap"
)

// Message types carried on the wire inside extracted blocks.
const (
	TypePublic  = "public"
	TypePrivate = "private"
)

// Broadcast is the recipient value meaning "visible to all powers".
const Broadcast = "ALL"

// Message is one accepted negotiation message. Sender and Phase come from
// caller context at validation time; ID and SentAt are stamped by the
// transcript store on append.
type Message struct {
	ID        string
	Sender    string
	Recipient string
	Type      string
	Phase     string
	Content   string
	SentAt    time.Time
}

// ValidateCandidates filters extractor candidates down to structurally valid
// messages, preserving extraction order. A candidate survives iff it carries
// message_type and content, and, when private, a recipient. Anything else is
// dropped and logged, never fatal. Non-private messages address the
// broadcast recipient.
func ValidateCandidates(cands []perception.MessageCandidate, sender, phase string, log *zap.Logger) []Message {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]Message, 0, len(cands))
	for i, c := range cands {
		if c.MessageType == nil || c.Content == nil {
			log.Warn("dropping message candidate with missing fields",
				zap.Int("candidate", i),
				zap.String("sender", sender))
			continue
		}
		msg := Message{
			Sender:    sender,
			Type:      *c.MessageType,
			Phase:     phase,
			Content:   *c.Content,
			Recipient: Broadcast,
		}
		if msg.Type == TypePrivate {
			if c.Recipient == nil {
				log.Warn("dropping private message without recipient",
					zap.Int("candidate", i),
					zap.String("sender", sender))
				continue
			}
			msg.Recipient = *c.Recipient
		}
		out = append(out, msg)
	}
	return out
}
