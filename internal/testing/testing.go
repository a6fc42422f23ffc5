// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/desertthunder/nowbar/internal/services"
	"github.com/desertthunder/nowbar/internal/tokens"
)

// MockService is a configurable test double for [services.Service].
type MockService struct {
	AuthURLValue  string
	ExchangeRec   *tokens.Record
	ExchangeErr   error
	RefreshRec    *tokens.Record
	RefreshErr    error
	NowPlaying    *services.NowPlaying
	NowPlayingErr error

	ExchangeCalls int
	RefreshCalls  int
	FetchCalls    int
}

func (m *MockService) AuthURL(state string) string {
	return m.AuthURLValue + "?state=" + state
}

func (m *MockService) Exchange(ctx context.Context, code string) (*tokens.Record, error) {
	m.ExchangeCalls++
	return m.ExchangeRec, m.ExchangeErr
}

func (m *MockService) Refresh(ctx context.Context, refreshToken string) (*tokens.Record, error) {
	m.RefreshCalls++
	return m.RefreshRec, m.RefreshErr
}

func (m *MockService) CurrentlyPlaying(ctx context.Context, accessToken string) (*services.NowPlaying, error) {
	m.FetchCalls++
	return m.NowPlaying, m.NowPlayingErr
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
