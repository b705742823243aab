// Package password provides the default argon2id credential hasher.
//
// Hashes use the PHC string format so parameters travel with the hash and
// verification works across parameter upgrades.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB   uint32 = 8 * 1024
	minSaltLength uint32 = 16
	minKeyLength  uint32 = 16
	algorithmID          = "argon2id"
)

// Params are the argon2id cost parameters.
type Params struct {
	Memory      uint32 // KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follows current OWASP guidance for interactive logins.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes and verifies passwords with argon2id. Safe for concurrent
// use.
type Hasher struct {
	params Params
}

// NewHasher validates the parameters and returns a ready hasher.
func NewHasher(p Params) (*Hasher, error) {
	if p.Memory < minMemoryKB {
		return nil, errors.New("argon2 memory must be >= 8192 KB")
	}
	if p.Time < 1 {
		return nil, errors.New("argon2 time must be >= 1")
	}
	if p.Parallelism < 1 {
		return nil, errors.New("argon2 parallelism must be >= 1")
	}
	if p.SaltLength < minSaltLength {
		return nil, errors.New("argon2 salt length must be >= 16")
	}
	if p.KeyLength < minKeyLength {
		return nil, errors.New("argon2 key length must be >= 16")
	}
	return &Hasher{params: p}, nil
}

// Hash derives a PHC-encoded hash from the plaintext. Bytes are used exactly
// as provided, no normalization.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("empty password")
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(plain), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash with the encoded parameters and compares in
// constant time.
func (h *Hasher) Verify(plain, encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(plain), parsed.salt, parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.hash)))

	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1, nil
}

// NeedsRehash reports whether the encoded hash was produced with weaker
// parameters than the hasher currently carries.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}
	if h.params.Memory > parsed.memory || h.params.Time > parsed.time || h.params.Parallelism > parsed.parallelism {
		return true, nil
	}
	return uint32(len(parsed.hash)) != h.params.KeyLength, nil
}

type phcHash struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

func parsePHC(encoded string) (*phcHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if !strings.HasPrefix(parts[2], "v=") || err != nil {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	out := &phcHash{}
	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, errors.New("invalid parameter entry")
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return nil, errors.New("invalid memory parameter")
			}
			out.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v == 0 {
				return nil, errors.New("invalid time parameter")
			}
			out.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || v == 0 {
				return nil, errors.New("invalid parallelism parameter")
			}
			out.parallelism = uint8(v)
		default:
			return nil, errors.New("unsupported parameter")
		}
	}
	if out.memory == 0 || out.time == 0 || out.parallelism == 0 {
		return nil, errors.New("missing parameters")
	}

	if out.salt, err = base64.StdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if len(out.salt) < int(minSaltLength) {
		return nil, errors.New("invalid salt length")
	}
	if out.hash, err = base64.StdEncoding.DecodeString(parts[5]); err != nil {
		return nil, errors.New("invalid hash encoding")
	}
	if len(out.hash) == 0 {
		return nil, errors.New("invalid hash length")
	}
	return out, nil
}
