package storage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"kanjibattle/domain"
	"kanjibattle/game"
	"kanjibattle/migrations"
	"kanjibattle/storage"
)

var repo *storage.PostgresRepo

func TestMain(m *testing.M) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine3.22",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testusername"),
		postgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	migrations.Migrate(connString)

	repo, err = storage.NewPostgresRepo(ctx, connString)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	// Cleanup
	postgresContainer.Terminate(ctx)
	os.Exit(code)
}

func TestPostgresRepo(t *testing.T) {
	ctx := context.Background()
	t.Run("CreateUser", func(t *testing.T) {
		id, err := repo.CreateUser(ctx, "oussama", "hashed_secret")
		assert.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("CreateUser_Duplicate", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, "oussama", "new_hash")
		assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	})

	t.Run("GetUserByUsername", func(t *testing.T) {
		user, err := repo.GetUserByUsername(ctx, "oussama")
		assert.NoError(t, err)
		assert.Equal(t, "oussama", user.Username)
		assert.Equal(t, "hashed_secret", user.PasswordHash)
		assert.NotEmpty(t, user.Id)
	})

	t.Run("GetUserByUsername_NotFound", func(t *testing.T) {
		_, err := repo.GetUserByUsername(ctx, "ghost_user")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("GetUserById", func(t *testing.T) {
		id, err := repo.CreateUser(ctx, "tester2", "hash2")
		require.NoError(t, err)

		user, err := repo.GetUserById(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, "hash2", user.PasswordHash)
		assert.Equal(t, "tester2", user.Username)
	})

	t.Run("GetUserById_NotFound", func(t *testing.T) {
		_, err := repo.GetUserById(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestQuestions(t *testing.T) {
	t.Run("deals the requested count from one tier", func(t *testing.T) {
		questions, err := repo.Questions([]string{"n5"}, game.MODE_READ, 5)
		require.NoError(t, err)
		require.Len(t, questions, 5)

		for _, q := range questions {
			assert.Equal(t, "n5", q.Tier)
			assert.NotEmpty(t, q.Prompt)
			assert.NotEmpty(t, q.Meaning)
			assert.Contains(t, q.AcceptedAnswers, game.NormalizeAnswer(q.Meaning))
			assert.Positive(t, q.StrokeCount)
			assert.Positive(t, q.PointValue)
		}
	})

	t.Run("empty tiers means any tier", func(t *testing.T) {
		questions, err := repo.Questions(nil, game.MODE_READ, 18)
		require.NoError(t, err)
		assert.Len(t, questions, 18)
	})

	t.Run("write mode only deals kanji with reference strokes", func(t *testing.T) {
		questions, err := repo.Questions(nil, game.MODE_WRITE, 10)
		require.NoError(t, err)
		require.Len(t, questions, 10)

		for _, q := range questions {
			assert.NotEmpty(t, q.ReferenceStrokes)
			for _, s := range q.ReferenceStrokes {
				assert.GreaterOrEqual(t, len(s.Points), 2)
			}
		}
	})

	t.Run("not enough questions in the tier", func(t *testing.T) {
		_, err := repo.Questions([]string{"n5"}, game.MODE_READ, 100)
		assert.ErrorIs(t, err, domain.ErrNotEnoughQuestions)
	})

	t.Run("tier without stroke data cannot host a write game", func(t *testing.T) {
		_, err := repo.Questions([]string{"n4"}, game.MODE_WRITE, 1)
		assert.ErrorIs(t, err, domain.ErrNotEnoughQuestions)
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, err := repo.Questions([]string{"n0"}, game.MODE_READ, 1)
		assert.ErrorIs(t, err, domain.ErrNotEnoughQuestions)
	})
}
