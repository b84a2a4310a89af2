package press

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// TranscriptStore owns the shared negotiation transcript for a game session.
// It is append-only: messages land here only after validation, and readers
// get immutable snapshots, so the visibility filter never races an append.
type TranscriptStore struct {
	db  *sql.DB
	log *zap.Logger
}

const transcriptSchema = `
CREATE TABLE IF NOT EXISTS messages (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	id        TEXT    NOT NULL,
	sender    TEXT    NOT NULL,
	recipient TEXT    NOT NULL,
	type      TEXT    NOT NULL,
	phase     TEXT    NOT NULL,
	content   TEXT    NOT NULL,
	sent_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_phase ON messages(phase);
`

// OpenTranscriptStore opens (creating if needed) a transcript database at
// path. Use ":memory:" for an ephemeral session.
func OpenTranscriptStore(path string, log *zap.Logger) (*TranscriptStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open transcript db: %w", err)
	}
	// Appends are serialized through a single connection; this also keeps
	// ":memory:" databases from fragmenting across pooled connections.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(transcriptSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init transcript schema: %w", err)
	}
	log.Debug("transcript store opened", zap.String("path", path))
	return &TranscriptStore{db: db, log: log}, nil
}

// Append records an accepted message, stamping its ID and send time, and
// returns the stored form.
func (s *TranscriptStore) Append(m Message) (Message, error) {
	m.ID = uuid.NewString()
	m.SentAt = time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO messages (id, sender, recipient, type, phase, content, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Sender, m.Recipient, m.Type, m.Phase, m.Content, m.SentAt.UnixNano(),
	)
	if err != nil {
		return Message{}, fmt.Errorf("append message: %w", err)
	}
	s.log.Debug("message appended",
		zap.String("id", m.ID),
		zap.String("sender", m.Sender),
		zap.String("recipient", m.Recipient),
		zap.String("phase", m.Phase))
	return m, nil
}

// Snapshot returns the full transcript in chronological order. The slice is
// freshly allocated on every call and safe to hand to concurrent readers.
func (s *TranscriptStore) Snapshot() ([]Message, error) {
	return s.query(`SELECT id, sender, recipient, type, phase, content, sent_at
		FROM messages ORDER BY seq`)
}

// MessagesByPhase returns the chronological transcript of a single phase.
func (s *TranscriptStore) MessagesByPhase(phase string) ([]Message, error) {
	return s.query(`SELECT id, sender, recipient, type, phase, content, sent_at
		FROM messages WHERE phase = ? ORDER BY seq`, phase)
}

func (s *TranscriptStore) query(q string, args ...any) ([]Message, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var sentAt int64
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Type, &m.Phase, &m.Content, &sentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.SentAt = time.Unix(0, sentAt).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close releases the underlying database.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}
