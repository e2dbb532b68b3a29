// Package memoryadapter is the default implementation of the context
// assembler's memory block: a SQLite-backed turn history per session, with
// older turns summarized by an LLM once the budget is exceeded so the
// context block stays small regardless of how long a session runs.
package memoryadapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/technogeek-hash/nexo-ai-sub000/pkg/llms"
	"github.com/technogeek-hash/nexo-ai-sub000/pkg/utils"
)

// Default budget tuning, in the same spirit as a token-based summarization
// buffer: once a session's unsummarized turns exceed the budget, the oldest
// are folded into the running summary and only the most recent are kept
// verbatim.
const (
	DefaultTokenBudget   = 2000
	DefaultKeepRecent    = 6
	summarizationSystem  = `You are a conversation summarizer. Produce a concise summary of the conversation below that preserves key facts, decisions, and open threads. Write in a neutral, factual tone. Do not add information that isn't present.`
)

const schema = `
CREATE TABLE IF NOT EXISTS session_turns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_turns_session_id ON session_turns(session_id);

CREATE TABLE IF NOT EXISTS session_summaries (
	session_id TEXT PRIMARY KEY,
	summary TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// Turn is one message in a session's history.
type Turn struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// Service persists per-session turn history and summarizes it on request.
type Service struct {
	db           *sql.DB
	client       *llms.Client
	counter      *utils.TokenCounter
	tokenBudget  int
	keepRecent   int
}

// Config configures the Service.
type Config struct {
	// Path is the SQLite database file. ":memory:" is valid for tests.
	Path string
	// Client is used by Context to summarize old turns once a session is
	// past the token budget. When nil, no summary is produced and turns
	// older than the most recent ones are left out of the block.
	Client *llms.Client
	// Model selects the tiktoken encoding for budget accounting.
	Model string
}

// New opens (and migrates) the SQLite history store at cfg.Path.
func New(cfg Config) (*Service, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if cfg.Path == ":memory:" {
		// go-sqlite3 gives every pooled connection its own in-memory
		// database; a single connection keeps the schema and data visible
		// across calls.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	counter, err := utils.NewTokenCounter(model)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build token counter: %w", err)
	}

	return &Service{
		db:          db,
		client:      cfg.Client,
		counter:     counter,
		tokenBudget: DefaultTokenBudget,
		keepRecent:  DefaultKeepRecent,
	}, nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

// AppendTurn records one turn of a session's history.
func (s *Service) AppendTurn(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_turns (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, role, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

func (s *Service) turns(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM session_turns WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *Service) storedSummary(ctx context.Context, sessionID string) (string, error) {
	var summary string
	err := s.db.QueryRowContext(ctx, `SELECT summary FROM session_summaries WHERE session_id = ?`, sessionID).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load summary: %w", err)
	}
	return summary, nil
}

func (s *Service) saveSummary(ctx context.Context, sessionID, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_summaries (session_id, summary, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET summary = excluded.summary, updated_at = excluded.updated_at`,
		sessionID, summary, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// Context builds the memory block for sessionID: a running summary (if one
// was ever produced, or produced fresh by this call when the turn history
// exceeds the token budget) followed by the most recent keepRecent turns
// verbatim. An empty session returns an empty block.
func (s *Service) Context(ctx context.Context, sessionID string) (string, error) {
	turns, err := s.turns(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(turns) == 0 {
		return "", nil
	}

	summary, err := s.storedSummary(ctx, sessionID)
	if err != nil {
		return "", err
	}

	recentStart := 0
	if len(turns) > s.keepRecent {
		recentStart = len(turns) - s.keepRecent
	}
	older, recent := turns[:recentStart], turns[recentStart:]

	if len(older) > 0 && s.overBudget(older) && s.client != nil {
		newSummary, err := s.summarize(ctx, summary, older)
		if err != nil {
			return "", fmt.Errorf("failed to summarize session history: %w", err)
		}
		summary = newSummary
		if err := s.saveSummary(ctx, sessionID, summary); err != nil {
			return "", err
		}
	}

	var out strings.Builder
	if summary != "" {
		fmt.Fprintf(&out, "Previous conversation summary: %s\n\n", summary)
	}
	for _, t := range recent {
		fmt.Fprintf(&out, "%s: %s\n", t.Role, t.Content)
	}
	return out.String(), nil
}

func (s *Service) overBudget(turns []Turn) bool {
	msgs := make([]utils.Message, len(turns))
	for i, t := range turns {
		msgs[i] = utils.Message{Role: t.Role, Content: t.Content}
	}
	return s.counter.CountMessages(msgs) > s.tokenBudget
}

func (s *Service) summarize(ctx context.Context, previousSummary string, turns []Turn) (string, error) {
	var conversation strings.Builder
	if previousSummary != "" {
		fmt.Fprintf(&conversation, "Prior summary: %s\n\n", previousSummary)
	}
	for _, t := range turns {
		fmt.Fprintf(&conversation, "%s: %s\n", t.Role, t.Content)
	}

	result, err := s.client.Complete(ctx, llms.CompletionOptions{
		Messages: []llms.Message{
			{Role: "system", Content: summarizationSystem},
			{Role: "user", Content: conversation.String()},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}
