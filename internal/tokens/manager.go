package tokens

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowbar/internal/shared"
)

// Refresher exchanges a refresh token for a new token set.
//
// The returned record's RefreshToken may be empty when the upstream did not
// issue a new one; callers must preserve the previous value in that case.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Record, error)
}

// Manager owns the expiry policy for the stored token: it decides whether the
// record is still usable, refreshes it through the [Refresher] when it is not,
// and persists the merged result.
//
// The read-modify-write around a refresh is guarded by a mutex so two
// overlapping polls cannot clobber each other's refresh_token update.
type Manager struct {
	store     *Store
	refresher Refresher
	logger    *log.Logger
	mu        sync.Mutex
	now       func() time.Time
}

// NewManager creates a Manager over the given store and refresher.
func NewManager(store *Store, refresher Refresher, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		store:     store,
		refresher: refresher,
		logger:    logger,
		now:       time.Now,
	}
}

// Access returns a usable access token, refreshing the stored record first
// when it is within [StalenessMargin] of expiry.
//
// No stored record fails with [shared.ErrNotAuthenticated]; a rejected refresh
// fails with [shared.ErrRefreshFailed]. Neither is retried here: the widget's
// fixed polling cadence is the retry mechanism.
func (m *Manager) Access(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, err := m.store.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: no stored token", shared.ErrNotAuthenticated)
		}
		return "", err
	}

	if !record.Stale(m.now()) {
		return record.AccessToken, nil
	}

	m.logger.Debug("access token stale, refreshing",
		"expires_at", record.ExpiresAt(),
		"refresh_token", shared.RedactSecret(record.RefreshToken))

	fresh, err := m.refresher.Refresh(ctx, record.RefreshToken)
	if err != nil {
		if errors.Is(err, shared.ErrRefreshFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	record.Apply(fresh, m.now())

	if err := m.store.Save(record); err != nil {
		return "", err
	}

	m.logger.Info("access token refreshed", "expires_at", record.ExpiresAt())

	return record.AccessToken, nil
}

// Authenticated reports whether a token record is currently stored. It never
// touches the network.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.store.Load()
	return err == nil
}

// Record returns the stored record for inspection (e.g. the status command).
func (m *Manager) Record() (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.Load()
}
