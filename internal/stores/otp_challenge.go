package stores

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpChallengeVersion1 = 1

var (
	ErrChallengeNotFound = errors.New("otp challenge not found")
	ErrChallengeExpired  = errors.New("otp challenge expired")
	ErrChallengeCode     = errors.New("otp code mismatch")
	ErrChallengeExceeded = errors.New("otp challenge attempts exceeded")
	ErrChallengeBackend  = errors.New("otp challenge backend unavailable")
)

type otpChallenge struct {
	PrincipalID string
	CodeDigest  [32]byte
	Attempts    uint16
	ExpiresAt   int64
}

// OTPChallengeStore keeps single-use OTP challenges keyed by MFA session id.
// A stored challenge only ever holds the code's digest.
type OTPChallengeStore struct {
	redis       redis.UniversalClient
	prefix      string
	maxAttempts int
}

func NewOTPChallengeStore(redisClient redis.UniversalClient, prefix string, maxAttempts int) *OTPChallengeStore {
	if prefix == "" {
		prefix = "aoc"
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &OTPChallengeStore{redis: redisClient, prefix: prefix, maxAttempts: maxAttempts}
}

func (s *OTPChallengeStore) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Save stores a fresh challenge, replacing any previous one for the session.
func (s *OTPChallengeStore) Save(ctx context.Context, sessionID, principalID, code string, ttl time.Duration) error {
	record := &otpChallenge{
		PrincipalID: principalID,
		CodeDigest:  sha256.Sum256([]byte(code)),
		ExpiresAt:   time.Now().Add(ttl).Unix(),
	}
	encoded, err := encodeOTPChallenge(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(sessionID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	return nil
}

// Consume validates the supplied code against the stored challenge. A match
// deletes the challenge and returns nil. A mismatch increments the attempt
// counter and returns ErrChallengeCode, or deletes the challenge and returns
// ErrChallengeExceeded once the attempt ceiling is reached. Wrong principal
// counts as a mismatch.
func (s *OTPChallengeStore) Consume(ctx context.Context, sessionID, principalID, code string) error {
	const maxRetries = 4
	key := s.key(sessionID)
	supplied := sha256.Sum256([]byte(code))

	for i := 0; i < maxRetries; i++ {
		var outcome error
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			record, err := decodeOTPChallenge(data)
			if err != nil {
				return err
			}
			if time.Now().Unix() > record.ExpiresAt {
				outcome = ErrChallengeExpired
				return txDelete(ctx, tx, key)
			}

			match := subtle.ConstantTimeCompare(supplied[:], record.CodeDigest[:]) == 1 &&
				record.PrincipalID == principalID
			if match {
				return txDelete(ctx, tx, key)
			}

			record.Attempts++
			if int(record.Attempts) >= s.maxAttempts {
				outcome = ErrChallengeExceeded
				return txDelete(ctx, tx, key)
			}
			outcome = ErrChallengeCode

			ttl := time.Until(time.Unix(record.ExpiresAt, 0))
			if ttl <= 0 {
				outcome = ErrChallengeExpired
				return txDelete(ctx, tx, key)
			}
			updated, err := encodeOTPChallenge(record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
		}
		return outcome
	}

	return ErrChallengeNotFound
}

// Delete drops the challenge unconditionally.
func (s *OTPChallengeStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.redis.Del(ctx, s.key(sessionID)).Result(); err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	return nil
}

func txDelete(ctx context.Context, tx *redis.Tx, key string) error {
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		return nil
	})
	return err
}

func encodeOTPChallenge(record *otpChallenge) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(otpChallengeVersion1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	buf.Write(record.CodeDigest[:])

	if len(record.PrincipalID) > 65535 {
		return nil, errors.New("otp challenge principal length exceeded")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.PrincipalID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.PrincipalID)

	return buf.Bytes(), nil
}

func decodeOTPChallenge(data []byte) (*otpChallenge, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != otpChallengeVersion1 {
		return nil, errors.New("invalid otp challenge version")
	}

	record := &otpChallenge{}
	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(reader, record.CodeDigest[:]); err != nil {
		return nil, err
	}

	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	principal := make([]byte, n)
	if _, err := io.ReadFull(reader, principal); err != nil {
		return nil, err
	}
	record.PrincipalID = string(principal)

	return record, nil
}
