package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"olmvault/internal/domain"
	"olmvault/internal/store"
)

func TestOlmSession_RoundTrip(t *testing.T) {
	repo := store.NewOlmSessionRepo(openTestDB(t))
	ctx := context.Background()

	want := domain.OlmSession{
		SenderKey:  "curve1",
		SessionID:  "sess1",
		CreatedAt:  1700000000000,
		LastUsedAt: 1700000001000,
		Pickled:    "AAA",
		Initiated:  true,
	}
	require.NoError(t, repo.UpsertOlmSession(ctx, want))

	got, ok, err := repo.GetOlmSession(ctx, "curve1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestOlmSession_UpsertReplaces(t *testing.T) {
	repo := store.NewOlmSessionRepo(openTestDB(t))
	ctx := context.Background()

	s := domain.OlmSession{SenderKey: "curve1", SessionID: "sess1", Pickled: "AAA"}
	require.NoError(t, repo.UpsertOlmSession(ctx, s))

	s.Pickled = "BBB"
	s.LastUsedAt = 42
	require.NoError(t, repo.UpsertOlmSession(ctx, s))

	got, ok, err := repo.GetOlmSession(ctx, "curve1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "BBB", got.Pickled)
	require.EqualValues(t, 42, got.LastUsedAt)
}

func TestOlmSession_AbsentIsNotAnError(t *testing.T) {
	repo := store.NewOlmSessionRepo(openTestDB(t))

	_, ok, err := repo.GetOlmSession(context.Background(), "nobody")
	require.NoError(t, err)
	require.False(t, ok)
}
