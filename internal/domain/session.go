// Package domain defines the core types for tutoring sessions.
package domain

// Role identifies the author of a turn.
type Role string

const (
	// RoleUser marks a turn written by the student.
	RoleUser Role = "user"
	// RoleAssistant marks a turn written by the tutor model.
	RoleAssistant Role = "assistant"
)

// Turn is a single chat message. Timestamps are milliseconds since epoch;
// assistant turns are stamped one millisecond after their user turn so
// ordering survives timestamp collisions.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Metrics tracks per-session learning progress.
type Metrics struct {
	TotalMessages      int      `json:"totalMessages"`
	TopicsDiscussed    []string `json:"topicsDiscussed"`
	DifficultyLevel    Level    `json:"difficultyLevel"`
	UnderstandingScore int      `json:"understandingScore"`
	LastInteraction    int64    `json:"lastInteraction"`
}

// SessionState is the full persisted record for one session. It is owned
// exclusively by the session manager; nothing else mutates it.
type SessionState struct {
	SessionID string  `json:"sessionId"`
	History   []Turn  `json:"history"`
	Metrics   Metrics `json:"metrics"`
	CreatedAt int64   `json:"createdAt"`
}

// MaxHistoryTurns bounds the retained history. Older turns are evicted FIFO;
// TotalMessages keeps counting past the bound.
const MaxHistoryTurns = 50

// NewSessionState creates a fresh record. The understanding score starts at
// zero: an un-started session carries no evidence of understanding.
func NewSessionState(sessionID string, now int64) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		History:   []Turn{},
		Metrics: Metrics{
			TopicsDiscussed:    []string{},
			DifficultyLevel:    LevelBeginner,
			LastInteraction:    now,
			UnderstandingScore: 0,
		},
		CreatedAt: now,
	}
}

// AppendExchange records one completed user/assistant exchange and trims the
// history window. The pair is pushed atomically so truncation never splits it.
func (s *SessionState) AppendExchange(userText, assistantText string, now int64) {
	s.History = append(s.History,
		Turn{Role: RoleUser, Content: userText, Timestamp: now},
		Turn{Role: RoleAssistant, Content: assistantText, Timestamp: now + 1},
	)
	if len(s.History) > MaxHistoryTurns {
		s.History = s.History[len(s.History)-MaxHistoryTurns:]
	}
	s.Metrics.TotalMessages += 2
	s.Metrics.LastInteraction = now
}

// RecentTurns returns the last n turns of history.
func (s *SessionState) RecentTurns(n int) []Turn {
	if n >= len(s.History) {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
