package repository

import (
	"context"
	"io"
	"testing"
	"time"

	"ae-triage-intake/internal/domain/entity"
	domainRepo "ae-triage-intake/internal/domain/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newSampleIntake() *entity.Intake {
	in := entity.NewIntake(time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC))
	in.Profile.FirstName = "Jane"
	in.Allergies.SetNoKnownAllergies(true)
	in.Complaint.Code = "chest_pain"
	in.EnsureSymptoms(entity.FormChestPain)
	_ = in.Symptoms.Set(entity.FormChestPain, "radiation", []string{"Jaw"})
	return in
}

// runStoreContract exercises the behavior both session stores share.
func runStoreContract(t *testing.T, repo domainRepo.IntakeSessionRepository) {
	ctx := context.Background()

	t.Run("Create And Find", func(t *testing.T) {
		in := newSampleIntake()
		require.NoError(t, repo.Create(ctx, in))

		found, err := repo.FindByID(ctx, in.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, in.ID, found.ID)
		assert.Equal(t, "Jane", found.Profile.FirstName)
		assert.Equal(t, []string{"Jaw"}, found.Symptoms["radiation"], "multi choice should survive storage")
		assert.Equal(t, entity.FormChestPain, found.FormType)

		assert.ErrorIs(t, repo.Create(ctx, in), domainRepo.ErrSessionExists)
	})

	t.Run("Missing Session", func(t *testing.T) {
		found, err := repo.FindByID(ctx, newSampleIntake().ID)
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Update", func(t *testing.T) {
		in := newSampleIntake()
		require.NoError(t, repo.Create(ctx, in))

		in.Stage = entity.StageComplaint
		require.NoError(t, repo.Update(ctx, in))

		found, err := repo.FindByID(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StageComplaint, found.Stage)

		assert.ErrorIs(t, repo.Update(ctx, newSampleIntake()), domainRepo.ErrSessionNotFound)
	})

	t.Run("Copies Are Isolated", func(t *testing.T) {
		in := newSampleIntake()
		require.NoError(t, repo.Create(ctx, in))
		in.Profile.FirstName = "Changed"

		found, err := repo.FindByID(ctx, in.ID)
		require.NoError(t, err)
		found.Profile.LastName = "Also changed"

		again, err := repo.FindByID(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", again.Profile.FirstName)
		assert.Equal(t, "", again.Profile.LastName)
	})

	t.Run("Delete", func(t *testing.T) {
		in := newSampleIntake()
		require.NoError(t, repo.Create(ctx, in))
		require.NoError(t, repo.Delete(ctx, in.ID))

		found, err := repo.FindByID(ctx, in.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
		assert.ErrorIs(t, repo.Delete(ctx, in.ID), domainRepo.ErrSessionNotFound)
	})
}

func TestMemoryIntakeSessionRepository(t *testing.T) {
	repo := NewMemoryIntakeSessionRepository(time.Hour, newTestLogger())
	defer repo.Stop()

	runStoreContract(t, repo)

	t.Run("Expiry", func(t *testing.T) {
		store := NewMemoryIntakeSessionRepository(time.Hour, newTestLogger())
		defer store.Stop()

		now := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return now }

		in := newSampleIntake()
		require.NoError(t, store.Create(context.Background(), in))

		now = now.Add(59 * time.Minute)
		require.NoError(t, store.Update(context.Background(), in))

		found, err := store.FindByID(context.Background(), in.ID)
		require.NoError(t, err)
		assert.NotNil(t, found, "session should be alive before its TTL")

		now = now.Add(2 * time.Minute)
		found, err = store.FindByID(context.Background(), in.ID)
		require.NoError(t, err)
		assert.Nil(t, found, "update must not extend the expiry")
		assert.ErrorIs(t, store.Update(context.Background(), in), domainRepo.ErrSessionNotFound)

		assert.Equal(t, 1, store.Len())
		store.sweepExpired()
		assert.Equal(t, 0, store.Len(), "sweep should drop expired sessions")
	})

	t.Run("Stop Twice", func(t *testing.T) {
		store := NewMemoryIntakeSessionRepository(time.Hour, newTestLogger())
		store.Stop()
		store.Stop()
	})
}

func TestRedisIntakeSessionRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewRedisIntakeSessionRepository(client, time.Hour, newTestLogger())

	runStoreContract(t, repo)

	t.Run("Key And TTL", func(t *testing.T) {
		in := newSampleIntake()
		require.NoError(t, repo.Create(context.Background(), in))

		key := RedisIntakeSessionKeyPrefix + in.ID.String()
		assert.True(t, mr.Exists(key))
		assert.Equal(t, time.Hour, mr.TTL(key))

		mr.FastForward(30 * time.Minute)
		require.NoError(t, repo.Update(context.Background(), in))
		assert.Equal(t, 30*time.Minute, mr.TTL(key), "update should keep the remaining TTL")
	})

	t.Run("Expired In Redis", func(t *testing.T) {
		in := newSampleIntake()
		require.NoError(t, repo.Create(context.Background(), in))

		mr.FastForward(2 * time.Hour)

		found, err := repo.FindByID(context.Background(), in.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
		assert.ErrorIs(t, repo.Update(context.Background(), in), domainRepo.ErrSessionNotFound)
	})
}
