package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshRecordVersion1 = 1

var (
	ErrRefreshRecordNotFound = errors.New("refresh record not found")
	ErrRefreshBackend        = errors.New("refresh store backend unavailable")
)

// RefreshRecord is the persisted state behind one refresh-token value. The
// key is the value's digest; the value itself never reaches Redis.
type RefreshRecord struct {
	ID          string
	PrincipalID string
	Identifier  string
	Device      string
	Level       uint8
	ExpiresAt   int64
	CreatedAt   int64
	LastUsedAt  int64
}

// RefreshStore keeps refresh records keyed by digest, plus a per-principal
// index set so all of a principal's records can be revoked at once.
type RefreshStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRefreshStore(redisClient redis.UniversalClient, prefix string) *RefreshStore {
	if prefix == "" {
		prefix = "art"
	}
	return &RefreshStore{redis: redisClient, prefix: prefix}
}

func (s *RefreshStore) key(digest string) string {
	return s.prefix + ":" + digest
}

func (s *RefreshStore) principalKey(principalID string) string {
	return s.prefix + ":p:" + principalID
}

// Save persists the record with a TTL running to its expiry and indexes it
// under its principal.
func (s *RefreshStore) Save(ctx context.Context, digest string, record *RefreshRecord) error {
	encoded, err := encodeRefreshRecord(record)
	if err != nil {
		return err
	}
	ttl := time.Until(time.Unix(record.ExpiresAt, 0))
	if ttl <= 0 {
		return errors.New("refresh record already expired")
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.key(digest), encoded, ttl)
	pipe.SAdd(ctx, s.principalKey(record.PrincipalID), digest)
	pipe.Expire(ctx, s.principalKey(record.PrincipalID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshBackend, err)
	}
	return nil
}

func (s *RefreshStore) Get(ctx context.Context, digest string) (*RefreshRecord, error) {
	data, err := s.redis.Get(ctx, s.key(digest)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRefreshRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRefreshBackend, err)
	}
	return decodeRefreshRecord(data)
}

// Consume deletes the record and reports whether this caller performed the
// deletion. Under concurrent rotation of the same value exactly one caller
// sees true; the rest see false.
func (s *RefreshStore) Consume(ctx context.Context, digest string, principalID string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(digest)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRefreshBackend, err)
	}
	if n > 0 && principalID != "" {
		_, _ = s.redis.SRem(ctx, s.principalKey(principalID), digest).Result()
	}
	return n > 0, nil
}

// Delete removes the record without caring whether it existed.
func (s *RefreshStore) Delete(ctx context.Context, digest string, principalID string) error {
	if _, err := s.redis.Del(ctx, s.key(digest)).Result(); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshBackend, err)
	}
	if principalID != "" {
		_, _ = s.redis.SRem(ctx, s.principalKey(principalID), digest).Result()
	}
	return nil
}

// DeleteByPrincipal removes every indexed record for the principal and
// returns how many record keys were actually deleted. Index members whose
// records already expired count for nothing.
func (s *RefreshStore) DeleteByPrincipal(ctx context.Context, principalID string) (int, error) {
	setKey := s.principalKey(principalID)
	digests, err := s.redis.SMembers(ctx, setKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRefreshBackend, err)
	}
	if len(digests) == 0 {
		_, _ = s.redis.Del(ctx, setKey).Result()
		return 0, nil
	}

	keys := make([]string, 0, len(digests)+1)
	for _, d := range digests {
		keys = append(keys, s.key(d))
	}
	deleted, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRefreshBackend, err)
	}
	_, _ = s.redis.Del(ctx, setKey).Result()
	return int(deleted), nil
}

func encodeRefreshRecord(record *RefreshRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(refreshRecordVersion1)
	buf.WriteByte(record.Level)

	for _, ts := range []int64{record.ExpiresAt, record.CreatedAt, record.LastUsedAt} {
		if err := binary.Write(&buf, binary.BigEndian, ts); err != nil {
			return nil, err
		}
	}
	for _, field := range []string{record.ID, record.PrincipalID, record.Identifier, record.Device} {
		if len(field) > 65535 {
			return nil, errors.New("refresh record field length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeRefreshRecord(data []byte) (*RefreshRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != refreshRecordVersion1 {
		return nil, errors.New("invalid refresh record version")
	}

	record := &RefreshRecord{}
	if record.Level, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	for _, ts := range []*int64{&record.ExpiresAt, &record.CreatedAt, &record.LastUsedAt} {
		if err := binary.Read(reader, binary.BigEndian, ts); err != nil {
			return nil, err
		}
	}
	for _, field := range []*string{&record.ID, &record.PrincipalID, &record.Identifier, &record.Device} {
		var n uint16
		if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
			return nil, err
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		*field = string(raw)
	}

	return record, nil
}
