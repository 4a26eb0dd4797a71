package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"olmvault/internal/domain"
	"olmvault/internal/store"
)

func TestAddLink_DedupesIdenticalEdges(t *testing.T) {
	repo := store.NewKeyTrustRepo(openTestDB(t))
	ctx := context.Background()

	link := domain.KeyChainLink{
		SigningUserID: "@alice:example.org", SigningKey: "msk",
		SignedUserID: "@alice:example.org", SignedKey: "ssk",
	}
	require.NoError(t, repo.AddLink(ctx, link))
	require.NoError(t, repo.AddLink(ctx, link))

	links, err := repo.LinksForSignedKey(ctx, "@alice:example.org", "ssk")
	require.NoError(t, err)
	require.Len(t, links, 1, "identical 4-tuples collapse to one edge")
}

func TestLinksForSignedKey_WalksEdges(t *testing.T) {
	repo := store.NewKeyTrustRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.AddLink(ctx, domain.KeyChainLink{
		SigningUserID: "@alice:example.org", SigningKey: "msk",
		SignedUserID: "@alice:example.org", SignedKey: "ssk",
	}))
	require.NoError(t, repo.AddLink(ctx, domain.KeyChainLink{
		SigningUserID: "@alice:example.org", SigningKey: "ssk",
		SignedUserID: "@bob:example.org", SignedKey: "devkey",
	}))

	links, err := repo.LinksForSignedKey(ctx, "@bob:example.org", "devkey")
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "ssk", links[0].SigningKey)

	none, err := repo.LinksForSignedKey(ctx, "@carol:example.org", "x")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestDeleteLinks_PurgesGraph(t *testing.T) {
	repo := store.NewKeyTrustRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.AddLink(ctx, domain.KeyChainLink{
		SigningUserID: "@a", SigningKey: "k", SignedUserID: "@b", SignedKey: "l",
	}))
	require.NoError(t, repo.DeleteLinks(ctx))

	links, err := repo.LinksForSignedKey(ctx, "@b", "l")
	require.NoError(t, err)
	require.Empty(t, links)
}

func TestDeviceKey_PutReplaces(t *testing.T) {
	repo := store.NewKeyTrustRepo(openTestDB(t))
	ctx := context.Background()

	dk := domain.DeviceKey{
		UserID: "@alice:example.org", KeyLabel: "DEVICEA",
		SignedPayload: `{"keys":1}`, TrustLevel: "cross-signed",
	}
	require.NoError(t, repo.PutDeviceKey(ctx, dk))

	dk.SignedPayload = `{"keys":2}`
	dk.TrustLevel = "verified"
	require.NoError(t, repo.PutDeviceKey(ctx, dk))

	got, ok, err := repo.GetDeviceKey(ctx, "@alice:example.org", "DEVICEA")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, dk, got)
}

func TestDeviceKey_AbsentIsNotAnError(t *testing.T) {
	repo := store.NewKeyTrustRepo(openTestDB(t))

	_, ok, err := repo.GetDeviceKey(context.Background(), "@nobody", "X")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOutdatedKeys_SetSemantics(t *testing.T) {
	repo := store.NewKeyTrustRepo(openTestDB(t))
	ctx := context.Background()

	outdated, err := repo.IsOutdated(ctx, "@alice:example.org")
	require.NoError(t, err)
	require.False(t, outdated)

	require.NoError(t, repo.MarkOutdated(ctx, "@alice:example.org"))
	require.NoError(t, repo.MarkOutdated(ctx, "@alice:example.org")) // idempotent

	outdated, err = repo.IsOutdated(ctx, "@alice:example.org")
	require.NoError(t, err)
	require.True(t, outdated)

	require.NoError(t, repo.ClearOutdated(ctx, "@alice:example.org"))
	outdated, err = repo.IsOutdated(ctx, "@alice:example.org")
	require.NoError(t, err)
	require.False(t, outdated)
}
