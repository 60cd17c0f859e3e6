package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func TestLoadDirReadsDocuments(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "finance"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "finance", "budgeting.md"), []byte("budget guide"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "seo.txt"), []byte("seo playbook"), 0644))

	store, err := LoadDir(root)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	doc, ok := store.Get("finance/budgeting")
	require.True(t, ok)
	require.Equal(t, "budget guide", doc)

	_, ok = store.Get("finance/budgeting.md")
	require.False(t, ok)
}

func TestLoadDirToleratesMissingTree(t *testing.T) {
	store, err := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())
}

func TestMatchFindsTaggedDocuments(t *testing.T) {
	store := NewStore(map[string]string{
		"finance/budgeting": "a",
		"finance/costs":     "b",
		"marketing/seo":     "c",
	})

	docs := store.Match([]string{"Finance"}, 10)
	require.Len(t, docs, 2)
	require.Equal(t, "finance/budgeting", docs[0].Key)
	require.Equal(t, "finance/costs", docs[1].Key)

	docs = store.Match([]string{"finance"}, 1)
	require.Len(t, docs, 1)

	require.Empty(t, store.Match([]string{"legal"}, 10))
	require.Empty(t, store.Match(nil, 10))
}

func TestLoadFromRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "kb:finance/budgeting", "budget guide", 0).Err())
	require.NoError(t, client.Set(ctx, "kb:marketing/seo", "seo playbook", 0).Err())
	require.NoError(t, client.Set(ctx, "other:ignored", "nope", 0).Err())

	store, err := loadFromClient(ctx, client, "kb:")
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	doc, ok := store.Get("marketing/seo")
	require.True(t, ok)
	require.Equal(t, "seo playbook", doc)
}

func TestLoadFromRedisClientEmptyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store, err := loadFromClient(context.Background(), client, "kb:")
	require.NoError(t, err)
	require.Equal(t, 0, store.Len())
}
