package stepauth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Channel names the surface an attempt arrived on.
type Channel string

const (
	ChannelWeb     Channel = "WEB"
	ChannelMobile  Channel = "MOBILE"
	ChannelAPI     Channel = "API"
	ChannelUnknown Channel = "UNKNOWN"
)

// AuthContext is the per-attempt request environment. Callers build one per
// attempt and pass it explicitly; the engine never pulls this state from
// ambient request-scoped storage.
type AuthContext struct {
	IPAddress          string
	UserAgent          string
	Channel            Channel
	AttemptedAt        time.Time
	SuspiciousActivity bool
}

// NewAuthContext builds a context for an attempt happening now.
func NewAuthContext(ip, userAgent string, channel Channel) AuthContext {
	if channel == "" {
		channel = ChannelUnknown
	}
	return AuthContext{
		IPAddress:   ip,
		UserAgent:   userAgent,
		Channel:     channel,
		AttemptedAt: time.Now().UTC(),
	}
}

// Device derives the stable device fingerprint refresh tokens are bound to.
// It combines the channel with a digest of the user agent, so two browsers on
// one machine count as distinct devices but one browser stays stable across
// attempts.
func (c AuthContext) Device() string {
	sum := sha256.Sum256([]byte(c.UserAgent))
	return string(c.Channel) + ":" + hex.EncodeToString(sum[:8])
}
