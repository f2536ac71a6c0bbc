package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sravan-dsai/newslens/internal/classify"
)

// testDB returns a connected DB or skips if DATABASE_URL is not set.
func testDB(t *testing.T) *DB {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, Migrate(dbURL))

	ctx := context.Background()
	db, err := New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func testUser(t *testing.T, db *DB) *User {
	t.Helper()
	ctx := context.Background()
	subject := "auth_" + uuid.New().String()[:8]
	user, err := db.CreateUser(ctx, subject, "test@example.com")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteUser(ctx, user.ID) })
	return user
}

func samplePredictions() []classify.Prediction {
	return []classify.Prediction{
		{
			Text:          "NASA launches new satellite into orbit",
			Category:      "Sci/Tech",
			Confidence:    0.97,
			Probabilities: map[string]float64{"Sci/Tech": 0.97, "World": 0.03},
		},
		{
			Text:          "Team wins championship final",
			Category:      "Sports",
			Confidence:    0.91,
			Probabilities: map[string]float64{"Sports": 0.91, "World": 0.09},
		},
	}
}

func TestMigrations(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	// Migrations are idempotent.
	require.NoError(t, Migrate(dbURL))
	require.NoError(t, Migrate(dbURL))
}

func TestUserCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	subject := "auth_" + uuid.New().String()[:8]
	user, err := db.CreateUser(ctx, subject, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "free", user.Tier)
	assert.Equal(t, subject, user.AuthSubject)

	found, err := db.GetUserBySubject(ctx, subject)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, db.UpdateUserTier(ctx, user.ID, "pro"))
	found, err = db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro", found.Tier)

	require.NoError(t, db.UpdateUserStripeCustomer(ctx, user.ID, "cus_123"))
	found, err = db.GetUserByStripeCustomer(ctx, "cus_123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, db.DeleteUser(ctx, user.ID))
	found, err = db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGetOrCreateUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	subject := "auth_" + uuid.New().String()[:8]
	first, err := db.GetOrCreateUser(ctx, subject, "a@example.com")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteUser(ctx, first.ID) })

	second, err := db.GetOrCreateUser(ctx, subject, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestBatchCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	user := testUser(t, db)

	created, err := db.CreateBatch(ctx, CreateBatchParams{
		UserID:     user.ID,
		SourceName: "articles.csv",
		Results:    samplePredictions(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created.ArticleCount)

	found, err := db.GetBatchByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Results, 2)
	assert.Equal(t, "Sci/Tech", found.Results[0].Category)
	assert.InDelta(t, 0.97, found.Results[0].Confidence, 1e-9)

	summaries, err := db.ListUserBatches(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "articles.csv", summaries[0].SourceName)

	require.NoError(t, db.DeleteBatch(ctx, created.ID))
	found, err = db.GetBatchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGetBatchByID_NotFound(t *testing.T) {
	db := testDB(t)

	found, err := db.GetBatchByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCountUserArticlesSince(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	user := testUser(t, db)

	for range 3 {
		_, err := db.CreateBatch(ctx, CreateBatchParams{
			UserID:     user.ID,
			SourceName: "upload.txt",
			Results:    samplePredictions(),
		})
		require.NoError(t, err)
	}

	count, err := db.CountUserArticlesSince(ctx, user.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	count, err = db.CountUserArticlesSince(ctx, user.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteOldBatches(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	user := testUser(t, db)

	_, err := db.CreateBatch(ctx, CreateBatchParams{
		UserID:  user.ID,
		Results: samplePredictions(),
	})
	require.NoError(t, err)

	deleted, err := db.DeleteOldBatches(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))
}
