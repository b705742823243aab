package internaldefs

import (
	"github.com/stepauth/stepauth"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   stepauth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   stepauth.MetricID
	Name string
	Help string
}

// CounterDefs maps every engine counter to its exported name.
var CounterDefs = []CounterDef{
	{ID: stepauth.MetricAuthSuccess, Name: "stepauth_auth_success_total", Help: "Fully authenticated attempts."},
	{ID: stepauth.MetricAuthFailure, Name: "stepauth_auth_failure_total", Help: "Failed authentication attempts."},
	{ID: stepauth.MetricAuthMFARequired, Name: "stepauth_auth_mfa_required_total", Help: "Attempts held pending a second factor."},
	{ID: stepauth.MetricMFASuccess, Name: "stepauth_mfa_success_total", Help: "Completed MFA challenges."},
	{ID: stepauth.MetricMFAFailure, Name: "stepauth_mfa_failure_total", Help: "Failed MFA completions."},
	{ID: stepauth.MetricMFAAttemptsExceeded, Name: "stepauth_mfa_attempts_exceeded_total", Help: "MFA challenges invalidated by the attempt cap."},
	{ID: stepauth.MetricRefreshSuccess, Name: "stepauth_refresh_success_total", Help: "Successful token rotations."},
	{ID: stepauth.MetricRefreshFailure, Name: "stepauth_refresh_failure_total", Help: "Failed token rotations."},
	{ID: stepauth.MetricRefreshReplayDetected, Name: "stepauth_refresh_replay_detected_total", Help: "Rotations with an unknown or consumed refresh value."},
	{ID: stepauth.MetricRefreshDeviceMismatch, Name: "stepauth_refresh_device_mismatch_total", Help: "Rotations rejected for presenting from a different device."},
	{ID: stepauth.MetricLogout, Name: "stepauth_logout_total", Help: "Single-token logout operations."},
	{ID: stepauth.MetricLogoutAll, Name: "stepauth_logout_all_total", Help: "Logout-all operations."},
	{ID: stepauth.MetricTokenVerifySuccess, Name: "stepauth_token_verify_success_total", Help: "Token verifications that passed."},
	{ID: stepauth.MetricTokenVerifyFailure, Name: "stepauth_token_verify_failure_total", Help: "Token verifications that failed."},
	{ID: stepauth.MetricOTPDeliveryFailure, Name: "stepauth_otp_delivery_failure_total", Help: "Best-effort OTP deliveries that failed."},
}

// HistogramDefs maps every engine histogram to its exported name.
var HistogramDefs = []HistogramDef{
	{ID: stepauth.MetricVerifyLatency, Name: "stepauth_verify_latency_seconds", Help: "Token verification latency histogram."},
}

// AuditDroppedName is the exported counter for audit dispatcher drops.
const AuditDroppedName = "stepauth_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// HistogramBounds are the upper bucket bounds, in seconds, as label values.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bounds as metric-name-safe suffixes for
// exporters that cannot carry labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
