package data

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/testutil"
)

func TestPresentationRepo_Integration(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewPresentationRepo(db)
		base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

		_, err := repo.Get(ctx, "sunday-service")
		require.ErrorIs(t, err, core.ErrPresentationNotFound)

		st, applied, err := repo.SetIfNewer(ctx, core.SetIfNewerParams{Key: "sunday-service", Slide: 3, At: base})
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, 3, st.CurrentSlide)

		st, applied, err = repo.SetIfNewer(ctx, core.SetIfNewerParams{Key: "sunday-service", Slide: 1, At: base.Add(-time.Second)})
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, 3, st.CurrentSlide)

		// Concurrent writers: the latest timestamp wins whatever the arrival order.
		var wg sync.WaitGroup
		for i := 1; i <= 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, setErr := repo.SetIfNewer(ctx, core.SetIfNewerParams{
					Key:   "sunday-service",
					Slide: 10 + i,
					At:    base.Add(time.Duration(i) * time.Second),
				})
				assert.NoError(t, setErr)
			}(i)
		}
		wg.Wait()

		got, err := repo.Get(ctx, "sunday-service")
		require.NoError(t, err)
		assert.Equal(t, 18, got.CurrentSlide)
		assert.True(t, got.LastUpdated.Equal(base.Add(8*time.Second)))
	})
}

func TestAppInfoRepo_Integration(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAppInfoRepo(db)

		v, err := repo.LatestVersion(ctx)
		require.NoError(t, err)
		assert.Empty(t, v)

		require.NoError(t, repo.SetLatestVersion(ctx, "1.2.0"))
		require.NoError(t, repo.SetLatestVersion(ctx, "1.3.0"))

		v, err = repo.LatestVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, "1.3.0", v)
	})
}
