package stepauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stepauth/stepauth/internal/stores"
)

// redisRefreshStore adapts the internal Redis refresh store to the root
// RefreshTokenStore contract, translating store errors into sentinels.
type redisRefreshStore struct {
	inner *stores.RefreshStore
}

func newRedisRefreshStore(client redis.UniversalClient, prefix string) *redisRefreshStore {
	return &redisRefreshStore{inner: stores.NewRefreshStore(client, prefix)}
}

func (s *redisRefreshStore) FindByDigest(ctx context.Context, digest string) (*RefreshTokenRecord, error) {
	rec, err := s.inner.Get(ctx, digest)
	if err != nil {
		if errors.Is(err, stores.ErrRefreshRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &RefreshTokenRecord{
		ID:          rec.ID,
		PrincipalID: rec.PrincipalID,
		Identifier:  rec.Identifier,
		Device:      rec.Device,
		ValueDigest: digest,
		Level:       TrustLevel(rec.Level),
		ExpiresAt:   time.Unix(rec.ExpiresAt, 0),
		CreatedAt:   time.Unix(rec.CreatedAt, 0),
		LastUsedAt:  time.Unix(rec.LastUsedAt, 0),
	}, nil
}

func (s *redisRefreshStore) Save(ctx context.Context, rec *RefreshTokenRecord) error {
	return s.inner.Save(ctx, rec.ValueDigest, &stores.RefreshRecord{
		ID:          rec.ID,
		PrincipalID: rec.PrincipalID,
		Identifier:  rec.Identifier,
		Device:      rec.Device,
		Level:       uint8(rec.Level),
		ExpiresAt:   rec.ExpiresAt.Unix(),
		CreatedAt:   rec.CreatedAt.Unix(),
		LastUsedAt:  rec.LastUsedAt.Unix(),
	})
}

func (s *redisRefreshStore) ConsumeByDigest(ctx context.Context, digest string) (bool, error) {
	rec, err := s.inner.Get(ctx, digest)
	if err != nil {
		if errors.Is(err, stores.ErrRefreshRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.inner.Consume(ctx, digest, rec.PrincipalID)
}

func (s *redisRefreshStore) DeleteByDigest(ctx context.Context, digest string) error {
	rec, err := s.inner.Get(ctx, digest)
	if err != nil {
		if errors.Is(err, stores.ErrRefreshRecordNotFound) {
			return nil
		}
		return err
	}
	return s.inner.Delete(ctx, digest, rec.PrincipalID)
}

func (s *redisRefreshStore) DeleteByPrincipal(ctx context.Context, principalID string) (int, error) {
	return s.inner.DeleteByPrincipal(ctx, principalID)
}

// redisOTPStore adapts the internal OTP challenge store.
type redisOTPStore struct {
	inner *stores.OTPChallengeStore
}

func newRedisOTPStore(client redis.UniversalClient, prefix string, maxAttempts int) *redisOTPStore {
	return &redisOTPStore{inner: stores.NewOTPChallengeStore(client, prefix, maxAttempts)}
}

func (s *redisOTPStore) Save(ctx context.Context, sessionID, principalID, code string, ttl time.Duration) error {
	if err := s.inner.Save(ctx, sessionID, principalID, code, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeStoreUnavailable, err)
	}
	return nil
}

func (s *redisOTPStore) Consume(ctx context.Context, sessionID, principalID, code string) error {
	err := s.inner.Consume(ctx, sessionID, principalID, code)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stores.ErrChallengeNotFound), errors.Is(err, stores.ErrChallengeExpired):
		return ErrMFASessionExpired
	case errors.Is(err, stores.ErrChallengeCode):
		return ErrInvalidMFACode
	case errors.Is(err, stores.ErrChallengeExceeded):
		return ErrMFAAttemptsExceeded
	default:
		return fmt.Errorf("%w: %v", ErrChallengeStoreUnavailable, err)
	}
}
