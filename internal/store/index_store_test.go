package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"olmvault/internal/domain"
	"olmvault/internal/store"
)

func TestRecordIndex_FirstClaimWins(t *testing.T) {
	repo := store.NewMessageIndexRepo(openTestDB(t))
	ctx := context.Background()

	idx := domain.MessageIndex{
		RoomID: "!r", SessionID: "s", MessageIndex: 3,
		EventID: "$event1", OriginTimestamp: 1700000000000,
	}
	require.NoError(t, repo.RecordIndex(ctx, idx))

	got, ok, err := repo.LookupIndex(ctx, "!r", "s", 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, idx, got)
}

func TestRecordIndex_IdempotentForSameEvent(t *testing.T) {
	repo := store.NewMessageIndexRepo(openTestDB(t))
	ctx := context.Background()

	idx := domain.MessageIndex{RoomID: "!r", SessionID: "s", MessageIndex: 3, EventID: "$event1"}
	require.NoError(t, repo.RecordIndex(ctx, idx))

	// Redelivery: same coordinate, same event, different timestamp.
	redelivered := idx
	redelivered.OriginTimestamp = 99
	require.NoError(t, repo.RecordIndex(ctx, redelivered))

	got, _, err := repo.LookupIndex(ctx, "!r", "s", 3)
	require.NoError(t, err)
	require.EqualValues(t, 0, got.OriginTimestamp, "first write wins; redelivery does not rewrite")
}

func TestRecordIndex_ReplayDetected(t *testing.T) {
	repo := store.NewMessageIndexRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.RecordIndex(ctx, domain.MessageIndex{
		RoomID: "!r", SessionID: "s", MessageIndex: 3, EventID: "$event1",
	}))

	err := repo.RecordIndex(ctx, domain.MessageIndex{
		RoomID: "!r", SessionID: "s", MessageIndex: 3, EventID: "$event2",
	})
	require.ErrorIs(t, err, domain.ErrReplayDetected)

	// The losing event id must never become visible.
	got, ok, err := repo.LookupIndex(ctx, "!r", "s", 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "$event1", got.EventID)
}

func TestRecordIndex_SameIndexDifferentRoomIsDistinct(t *testing.T) {
	repo := store.NewMessageIndexRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.RecordIndex(ctx, domain.MessageIndex{
		RoomID: "!a", SessionID: "s", MessageIndex: 3, EventID: "$event1",
	}))
	require.NoError(t, repo.RecordIndex(ctx, domain.MessageIndex{
		RoomID: "!b", SessionID: "s", MessageIndex: 3, EventID: "$event2",
	}))
}

func TestRecordIndex_ConcurrentRaceHasOneWinner(t *testing.T) {
	repo := store.NewMessageIndexRepo(openTestDB(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, eventID := range []string{"$event1", "$event2"} {
		wg.Add(1)
		go func(i int, eventID string) {
			defer wg.Done()
			errs[i] = repo.RecordIndex(ctx, domain.MessageIndex{
				RoomID: "!r", SessionID: "s", MessageIndex: 7, EventID: eventID,
			})
		}(i, eventID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, domain.ErrReplayDetected)
		}
	}
	require.Equal(t, 1, winners, "exactly one claim must win")

	got, ok, err := repo.LookupIndex(ctx, "!r", "s", 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, []string{"$event1", "$event2"}, got.EventID)
}
