package tokens

import (
	"testing"
	"time"
)

func TestRecord(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Stale", func(t *testing.T) {
		record := NewRecord("access", "refresh", 3600, issued)

		t.Run("fresh well before the margin", func(t *testing.T) {
			if record.Stale(issued.Add(10 * time.Minute)) {
				t.Error("expected record to be fresh 10 minutes after issue")
			}
		})

		t.Run("fresh just inside the margin", func(t *testing.T) {
			now := issued.Add(time.Hour - StalenessMargin - time.Millisecond)
			if record.Stale(now) {
				t.Error("expected record to be fresh one millisecond before the margin")
			}
		})

		t.Run("stale exactly at the margin boundary", func(t *testing.T) {
			now := issued.Add(time.Hour - StalenessMargin)
			if !record.Stale(now) {
				t.Error("expected record to be stale exactly at expiry minus margin")
			}
		})

		t.Run("stale after nominal expiry", func(t *testing.T) {
			if !record.Stale(issued.Add(2 * time.Hour)) {
				t.Error("expected record to be stale after expiry")
			}
		})

		t.Run("zero expires_in is immediately stale", func(t *testing.T) {
			short := NewRecord("access", "refresh", 0, issued)
			if !short.Stale(issued) {
				t.Error("expected zero-lifetime record to be stale at issue")
			}
		})
	})

	t.Run("ExpiresAt", func(t *testing.T) {
		record := NewRecord("access", "refresh", 3600, issued)
		want := issued.Add(time.Hour)
		if !record.ExpiresAt().Equal(want) {
			t.Errorf("expected expiry %v, got %v", want, record.ExpiresAt())
		}
	})

	t.Run("Apply", func(t *testing.T) {
		t.Run("preserves refresh token when response has none", func(t *testing.T) {
			record := NewRecord("old-access", "old-refresh", 3600, issued)
			fresh := &Record{AccessToken: "new-access", ExpiresIn: 1800}

			now := issued.Add(time.Hour)
			record.Apply(fresh, now)

			if record.AccessToken != "new-access" {
				t.Errorf("expected access token to update, got %s", record.AccessToken)
			}
			if record.RefreshToken != "old-refresh" {
				t.Errorf("expected refresh token preserved, got %s", record.RefreshToken)
			}
			if record.ExpiresIn != 1800 {
				t.Errorf("expected expires_in 1800, got %d", record.ExpiresIn)
			}
			if record.IssuedAt != now.UnixMilli() {
				t.Errorf("expected issued_at reset to now, got %d", record.IssuedAt)
			}
		})

		t.Run("adopts rotated refresh token", func(t *testing.T) {
			record := NewRecord("old-access", "old-refresh", 3600, issued)
			fresh := &Record{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 3600}

			record.Apply(fresh, issued.Add(time.Hour))

			if record.RefreshToken != "new-refresh" {
				t.Errorf("expected rotated refresh token, got %s", record.RefreshToken)
			}
		})
	})
}
