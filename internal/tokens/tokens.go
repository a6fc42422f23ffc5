package tokens

import "time"

// StalenessMargin is subtracted from a token's nominal expiry so a refresh
// happens before the token can expire mid-flight of a downstream API call.
const StalenessMargin = 5 * time.Minute

// Record is the sole persisted entity: the token set from the most recent
// authorization-code exchange or refresh.
type Record struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
	IssuedAt     int64  `json:"issued_at"`  // milliseconds since epoch
}

// NewRecord builds a Record issued at the given time.
func NewRecord(accessToken, refreshToken string, expiresIn int64, issuedAt time.Time) *Record {
	return &Record{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		IssuedAt:     issuedAt.UnixMilli(),
	}
}

// ExpiresAt returns the nominal expiry instant, without the staleness margin.
func (r *Record) ExpiresAt() time.Time {
	return time.UnixMilli(r.IssuedAt + r.ExpiresIn*1000)
}

// Stale reports whether the record needs a refresh at the given instant:
// now >= issued_at + expires_in - StalenessMargin.
func (r *Record) Stale(now time.Time) bool {
	return !now.Before(r.ExpiresAt().Add(-StalenessMargin))
}

// Apply merges a refresh response into the record. The refresh token is
// replaced only when the response carries a new one; issued_at is reset to now.
func (r *Record) Apply(fresh *Record, now time.Time) {
	r.AccessToken = fresh.AccessToken
	r.ExpiresIn = fresh.ExpiresIn
	if fresh.RefreshToken != "" {
		r.RefreshToken = fresh.RefreshToken
	}
	r.IssuedAt = now.UnixMilli()
}
