package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"halawa/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T, quota int) *SQLiteStore {
	t.Helper()
	logger := zerolog.Nop()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "halawa.db"), quota, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "bookings", "{}"))
	val, ok, err := store.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", val)

	require.NoError(t, store.Delete(ctx, "bookings"))
	_, ok, _ = store.Get(ctx, "bookings")
	assert.False(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	store := newTestSQLite(t, 0)
	ctx := context.Background()

	t.Run("MissingKey", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SetGetOverwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "theme", "light"))
		require.NoError(t, store.Set(ctx, "theme", "dark"))

		val, ok, err := store.Get(ctx, "theme")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "dark", val)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "theme"))
		_, ok, err := store.Get(ctx, "theme")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, store.PingContext(ctx))
	})
}

func TestSQLiteStoreQuota(t *testing.T) {
	store := newTestSQLite(t, 64)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "language", "en"))

	err := store.Set(ctx, "bookings", strings.Repeat("x", 100))
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	_, ok, err := store.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.False(t, ok, "rejected write must not be stored")

	// Overwriting a key only counts its new size.
	require.NoError(t, store.Set(ctx, "bookings", strings.Repeat("x", 40)))
	require.NoError(t, store.Set(ctx, "bookings", strings.Repeat("y", 40)))

	used, err := store.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, len("language")+2+len("bookings")+40, used)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halawa.db")
	logger := zerolog.Nop()
	ctx := context.Background()

	first, err := NewSQLiteStore(path, 0, &logger)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "language", "ar"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path, 0, &logger)
	require.NoError(t, err)
	defer second.Close()

	val, ok, err := second.Get(ctx, "language")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ar", val)
}

func TestRedisStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "halawa", time.Hour)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "bookings", `{"2026-01-22":[]}`))

		val, ok, err := store.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"2026-01-22":[]}`, val)
		assert.True(t, s.Exists("halawa:bookings"))
	})

	t.Run("SessionExpiry", func(t *testing.T) {
		s.FastForward(time.Hour + time.Second)
		_, ok, err := store.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("NoTTLIsDurable", func(t *testing.T) {
		durable := NewRedisStore(client, "", 0)
		require.NoError(t, durable.Set(ctx, "theme", "dark"))
		s.FastForward(48 * time.Hour)
		val, ok, err := durable.Get(ctx, "theme")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "dark", val)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "selectedDate", "2026-01-22T00:00:00Z"))
		require.NoError(t, store.Delete(ctx, "selectedDate"))
		_, ok, err := store.Get(ctx, "selectedDate")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("NilClient", func(t *testing.T) {
		nilStore := NewRedisStore(nil, "", 0)
		_, _, err := nilStore.Get(ctx, "x")
		assert.Error(t, err)
		assert.Error(t, nilStore.Set(ctx, "x", "y"))
		assert.Error(t, nilStore.Delete(ctx, "x"))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

}

func TestNewRedisClient(t *testing.T) {
	client := NewRedisClient(config.RedisConfig{Address: "localhost:6379", DB: 2})
	defer client.Close()
	assert.Equal(t, "localhost:6379", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
}

func TestBackupService(t *testing.T) {
	store := newTestSQLite(t, 0)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "bookings", "{}"))

	backupDir := filepath.Join(t.TempDir(), "backups")
	logger := zerolog.Nop()
	svc := NewBackupService(store, config.BackupConfig{
		Enabled:       true,
		RetentionDays: 7,
		StoragePath:   backupDir,
	}, &logger)

	path, err := svc.PerformBackup(ctx)
	require.NoError(t, err)
	assert.FileExists(t, path)

	logger2 := zerolog.Nop()
	restored, err := NewSQLiteStore(path, 0, &logger2)
	require.NoError(t, err)
	defer restored.Close()
	val, ok, err := restored.Get(ctx, "bookings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", val)

	old := filepath.Join(backupDir, "backup_old.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, past, past))

	assert.Equal(t, 1, svc.CleanupOldBackups())
	assert.NoFileExists(t, old)
	assert.FileExists(t, path)
}

func TestBackupServiceDisabled(t *testing.T) {
	store := newTestSQLite(t, 0)
	logger := zerolog.Nop()
	svc := NewBackupService(store, config.BackupConfig{Enabled: false}, &logger)

	done := make(chan struct{})
	go func() {
		svc.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled backup service should return immediately")
	}
}
