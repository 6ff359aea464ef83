package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ae-triage-intake/internal/domain/entity"
	domainRepo "ae-triage-intake/internal/domain/repository"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Redis key prefix for intake sessions
const RedisIntakeSessionKeyPrefix = "intake:session:"

type redisIntakeSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisIntakeSessionRepository stores each session as one JSON string with
// a TTL. Expiry is handled by redis itself.
func NewRedisIntakeSessionRepository(client *redis.Client, ttl time.Duration, log *logrus.Logger) domainRepo.IntakeSessionRepository {
	return &redisIntakeSessionRepository{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func sessionKey(id uuid.UUID) string {
	return RedisIntakeSessionKeyPrefix + id.String()
}

func (r *redisIntakeSessionRepository) Create(ctx context.Context, intake *entity.Intake) error {
	payload, err := json.Marshal(intake)
	if err != nil {
		return fmt.Errorf("encode intake %s: %w", intake.ID, err)
	}

	ok, err := r.client.SetNX(ctx, sessionKey(intake.ID), payload, r.ttl).Result()
	if err != nil {
		r.log.Warnf("Failed to create session %s in Redis: %+v", intake.ID, err)
		return fmt.Errorf("redis create session %s: %w", intake.ID, err)
	}
	if !ok {
		return domainRepo.ErrSessionExists
	}
	return nil
}

func (r *redisIntakeSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Intake, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.log.Warnf("Failed to get session %s from Redis: %+v", id, err)
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}

	var intake entity.Intake
	if err := json.Unmarshal(data, &intake); err != nil {
		return nil, fmt.Errorf("decode intake %s: %w", id, err)
	}
	return &intake, nil
}

// Update overwrites the session only if it still exists. The remaining TTL
// is kept so the session never outlives its token.
func (r *redisIntakeSessionRepository) Update(ctx context.Context, intake *entity.Intake) error {
	payload, err := json.Marshal(intake)
	if err != nil {
		return fmt.Errorf("encode intake %s: %w", intake.ID, err)
	}

	ok, err := r.client.SetXX(ctx, sessionKey(intake.ID), payload, redis.KeepTTL).Result()
	if err != nil {
		r.log.Warnf("Failed to update session %s in Redis: %+v", intake.ID, err)
		return fmt.Errorf("redis update session %s: %w", intake.ID, err)
	}
	if !ok {
		return domainRepo.ErrSessionNotFound
	}
	return nil
}

func (r *redisIntakeSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		r.log.Warnf("Failed to delete session %s from Redis: %+v", id, err)
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	if n == 0 {
		return domainRepo.ErrSessionNotFound
	}
	return nil
}
