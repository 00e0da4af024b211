package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/adaptutor/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "tutor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestGetSessionMissing(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	state, err := repo.GetSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	state := &domain.SessionState{
		SessionID: "s1",
		History: []domain.Turn{
			{Role: domain.RoleUser, Content: "what is a pointer?", Timestamp: 1700000000000},
			{Role: domain.RoleAssistant, Content: "A pointer holds an address.", Timestamp: 1700000000001},
		},
		Metrics: domain.Metrics{
			TotalMessages:      2,
			TopicsDiscussed:    []string{},
			DifficultyLevel:    domain.LevelIntermediate,
			UnderstandingScore: 42,
			LastInteraction:    1700000000000,
		},
		CreatedAt: 1699999990000,
	}

	require.NoError(t, repo.UpsertSession(ctx, state))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state, got)
}

func TestUpsertOverwrites(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	state := domain.NewSessionState("s1", 1700000000000)
	require.NoError(t, repo.UpsertSession(ctx, state))

	state.AppendExchange("ok got it", "great progress", 1700000001000)
	state.Metrics.UnderstandingScore = 7
	state.Metrics.DifficultyLevel = domain.LevelAdvanced
	require.NoError(t, repo.UpsertSession(ctx, state))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.History, 2)
	assert.Equal(t, 7, got.Metrics.UnderstandingScore)
	assert.Equal(t, domain.LevelAdvanced, got.Metrics.DifficultyLevel)
	assert.Equal(t, int64(1700000000000), got.CreatedAt, "created_at survives updates")
}

func TestFreshStateRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	state := domain.NewSessionState("fresh", 1700000000000)
	require.NoError(t, repo.UpsertSession(ctx, state))

	got, err := repo.GetSession(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state, got)
	assert.NotNil(t, got.History, "history must decode to an empty slice, not nil")
	assert.NotNil(t, got.Metrics.TopicsDiscussed)
}

func TestPing(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	require.NoError(t, repo.Ping(context.Background()))
}
