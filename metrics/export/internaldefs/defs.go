package internaldefs

import (
	goAccount "github.com/MrEthical07/goAccount"
)

type CounterDef struct {
	ID   goAccount.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goAccount.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goAccount.MetricLoginSuccess, Name: "goaccount_login_success_total", Help: "Successful password logins."},
	{ID: goAccount.MetricLoginFailure, Name: "goaccount_login_failure_total", Help: "Failed password logins."},
	{ID: goAccount.MetricLoginRateLimited, Name: "goaccount_login_rate_limited_total", Help: "Logins rejected by the failed-login throttle."},
	{ID: goAccount.MetricSocialLoginSuccess, Name: "goaccount_social_login_success_total", Help: "Successful social logins."},
	{ID: goAccount.MetricSocialLoginMiss, Name: "goaccount_social_login_miss_total", Help: "Social logins with no linked account."},
	{ID: goAccount.MetricReissueSuccess, Name: "goaccount_reissue_success_total", Help: "Successful credential reissues."},
	{ID: goAccount.MetricReissueRejected, Name: "goaccount_reissue_rejected_total", Help: "Reissues rejected by a credential or session check."},
	{ID: goAccount.MetricReissueUpstreamFailure, Name: "goaccount_reissue_upstream_failure_total", Help: "Reissues failed by Redis or token issuance."},
	{ID: goAccount.MetricSessionCreated, Name: "goaccount_session_created_total", Help: "Sessions opened by login."},
	{ID: goAccount.MetricSessionRotated, Name: "goaccount_session_rotated_total", Help: "Sessions rotated by reissue."},
	{ID: goAccount.MetricLogout, Name: "goaccount_logout_total", Help: "Logouts."},
	{ID: goAccount.MetricAccountCreationSuccess, Name: "goaccount_account_creation_success_total", Help: "Registered accounts."},
	{ID: goAccount.MetricAccountCreationDuplicate, Name: "goaccount_account_creation_duplicate_total", Help: "Registrations rejected as duplicate."},
	{ID: goAccount.MetricProfileUpdate, Name: "goaccount_profile_update_total", Help: "Profile field updates."},
	{ID: goAccount.MetricPasswordChange, Name: "goaccount_password_change_total", Help: "Password changes."},
	{ID: goAccount.MetricAccountDropped, Name: "goaccount_account_dropped_total", Help: "Accounts marked dropped."},
	{ID: goAccount.MetricAuthenticateSuccess, Name: "goaccount_authenticate_success_total", Help: "Accepted access tokens."},
	{ID: goAccount.MetricAuthenticateFailure, Name: "goaccount_authenticate_failure_total", Help: "Rejected access tokens."},
}

var HistogramDefs = []HistogramDef{
	{ID: goAccount.MetricAuthenticateLatency, Name: "goaccount_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

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

// HistogramUpperBounds are the finite bucket bounds in seconds; the last
// bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names the per-bucket OTel gauges.
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

// NormalizeBuckets copies raw into a fixed array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
