package tutor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ashureev/adaptutor/internal/domain"
	"github.com/ashureev/adaptutor/internal/store"
)

var (
	// ErrNotInitialized is returned when a mutation targets a session that
	// was never started. Correctly routed clients never trigger it.
	ErrNotInitialized = errors.New("session not initialized")

	// ErrSessionNotFound is returned by lookups where absence is meaningful.
	ErrSessionNotFound = errors.New("session not found")
)

// Understanding score bounds.
const (
	minScore = 0
	maxScore = 100
)

// Manager owns all session state. Every operation against one session
// identifier runs under that session's mutex, so each load-mutate-persist is
// atomic and two mutations never interleave on the same record.
type Manager struct {
	repo  store.Repository
	locks sync.Map // sessionID -> *sync.Mutex

	now func() int64 // millisecond clock, swappable in tests
}

// NewManager creates a session manager backed by the given repository.
func NewManager(repo store.Repository) *Manager {
	return &Manager{
		repo: repo,
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

// lockSession acquires the per-session mutex, creating it on first use.
// Mutexes stay resident for the session's lifetime; swapping them out would
// let two holders of different mutexes interleave on the same record.
func (m *Manager) lockSession(sessionID string) func() {
	l, _ := m.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Init idempotently binds the identifier to a session record. An existing
// record is left untouched.
func (m *Manager) Init(ctx context.Context, sessionID string) error {
	defer m.lockSession(sessionID)()

	state, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if state != nil {
		return nil
	}

	state = domain.NewSessionState(sessionID, m.now())
	if err := m.repo.UpsertSession(ctx, state); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// AddMessage appends one completed user/assistant exchange, scores the user
// text, applies the difficulty transition and persists the record before
// returning. The whole update is atomic per session.
func (m *Manager) AddMessage(ctx context.Context, sessionID, userText, assistantText string) error {
	defer m.lockSession(sessionID)()

	state, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if state == nil {
		return ErrNotInitialized
	}

	state.AppendExchange(userText, assistantText, m.now())

	score := state.Metrics.UnderstandingScore + Score(userText)
	if score > maxScore {
		score = maxScore
	}
	if score < minScore {
		score = minScore
	}
	state.Metrics.UnderstandingScore = score
	state.Metrics.DifficultyLevel = NextLevel(state.Metrics.DifficultyLevel, score)

	if err := m.repo.UpsertSession(ctx, state); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// History returns the session's turns and current difficulty tier. A session
// that does not exist yet simply behaves as brand-new: empty history,
// beginner tier, no error.
func (m *Manager) History(ctx context.Context, sessionID string) ([]domain.Turn, domain.Level, error) {
	defer m.lockSession(sessionID)()

	state, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("load session: %w", err)
	}
	if state == nil {
		return []domain.Turn{}, domain.LevelBeginner, nil
	}
	return state.History, state.Metrics.DifficultyLevel, nil
}

// Progress returns a metrics snapshot, the lifetime message count and the
// session age in milliseconds.
func (m *Manager) Progress(ctx context.Context, sessionID string) (domain.Metrics, int, int64, error) {
	defer m.lockSession(sessionID)()

	state, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Metrics{}, 0, 0, fmt.Errorf("load session: %w", err)
	}
	if state == nil {
		return domain.Metrics{}, 0, 0, ErrSessionNotFound
	}
	return state.Metrics, state.Metrics.TotalMessages, m.now() - state.CreatedAt, nil
}

// SetDifficulty overrides the difficulty tier, bypassing the state machine.
func (m *Manager) SetDifficulty(ctx context.Context, sessionID string, level domain.Level) error {
	if !level.Valid() {
		return fmt.Errorf("invalid difficulty level %q", level)
	}

	defer m.lockSession(sessionID)()

	state, err := m.repo.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if state == nil {
		return ErrSessionNotFound
	}

	state.Metrics.DifficultyLevel = level
	if err := m.repo.UpsertSession(ctx, state); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
