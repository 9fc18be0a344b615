package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaginify/backend/internal/apperror"
)

func TestHandle_Acquire(t *testing.T) {
	t.Run("opens once for concurrent callers", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		var mu sync.Mutex
		opens := 0
		h := NewHandleWithOpener(&DBConfig{}, func(ctx context.Context, _ *DBConfig) (*sql.DB, error) {
			mu.Lock()
			opens++
			mu.Unlock()
			return db, nil
		})

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := h.Acquire(context.Background())
				assert.NoError(t, err)
				assert.Same(t, db, got)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, opens)
		assert.True(t, h.Connected())
	})

	t.Run("failed open is transient and retried", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		attempts := 0
		h := NewHandleWithOpener(&DBConfig{}, func(ctx context.Context, _ *DBConfig) (*sql.DB, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
			}
			return db, nil
		})

		_, err = h.Acquire(context.Background())
		assert.ErrorIs(t, err, apperror.ErrTransientStore)
		assert.False(t, h.Connected())

		got, err := h.Acquire(context.Background())
		assert.NoError(t, err)
		assert.Same(t, db, got)
		assert.Equal(t, 2, attempts)
	})

	t.Run("wrapped pool needs no opener", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		h := NewHandleWithDB(db)
		got, err := h.Acquire(context.Background())
		assert.NoError(t, err)
		assert.Same(t, db, got)

		mock.ExpectClose()
		assert.NoError(t, h.Close())
		assert.False(t, h.Connected())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("slow open does not hold callers past their deadline", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		release := make(chan struct{})
		var mu sync.Mutex
		opens := 0
		h := NewHandleWithOpener(&DBConfig{}, func(ctx context.Context, _ *DBConfig) (*sql.DB, error) {
			mu.Lock()
			opens++
			mu.Unlock()
			<-release
			return db, nil
		})

		var wg sync.WaitGroup
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
				defer cancel()

				start := time.Now()
				_, err := h.Acquire(ctx)
				assert.ErrorIs(t, err, apperror.ErrTransientStore)
				assert.ErrorIs(t, err, context.DeadlineExceeded)
				assert.Less(t, time.Since(start), time.Second)
			}()
		}
		wg.Wait()
		close(release)

		got, err := h.Acquire(context.Background())
		assert.NoError(t, err)
		assert.Same(t, db, got)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, opens)
	})

	t.Run("open after close is refused", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()

		h := NewHandleWithOpener(&DBConfig{}, func(ctx context.Context, _ *DBConfig) (*sql.DB, error) {
			return db, nil
		})
		require.NoError(t, h.Close())

		_, err = h.Acquire(context.Background())
		assert.ErrorIs(t, err, apperror.ErrTransientStore)
		assert.False(t, h.Connected())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("close without open", func(t *testing.T) {
		h := NewHandle(&DBConfig{})
		assert.NoError(t, h.Close())
	})
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := &DBConfig{
		Host: "db", Port: "5432", User: "app", Password: "secret",
		Name: "imaginify", SSLMode: "disable", ConnectTimeout: 5 * time.Second,
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=secret dbname=imaginify sslmode=disable connect_timeout=5",
		cfg.DSN())
}
