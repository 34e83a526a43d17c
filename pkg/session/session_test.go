package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/driver/mock"
)

const baseURL = "https://trello.test"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Board = config.Board{BaseURL: baseURL, Email: "qa@example.com", Password: "secret"}
	cfg.Browser.Viewport = config.Viewport{Width: 1280, Height: 720}
	return cfg
}

func newLauncher() *mock.Launcher {
	return mock.NewLauncher(mock.NewApp(baseURL, "qa@example.com", "secret"))
}

func TestOpen(t *testing.T) {
	l := newLauncher()
	s, err := Open(context.Background(), testConfig(), l)
	require.NoError(t, err)

	assert.Equal(t, baseURL+"/", s.Driver.URL())
	info := s.PlatformInfo()
	require.NotNil(t, info)
	assert.Equal(t, core.EngineChromium, info.Engine)
	assert.Equal(t, core.Viewport{Width: 1280, Height: 720}, info.Viewport)
	assert.Len(t, l.Browser.Pages, 1)

	require.NoError(t, s.Close())
	assert.True(t, l.Browser.Closed)
	assert.True(t, l.Browser.Released)
}

func TestOpenInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Board.Password = ""
	l := newLauncher()

	_, err := Open(context.Background(), cfg, l)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.True(t, errors.Is(err, core.ErrMissingRequired))
	assert.Nil(t, l.Browser, "launch must not happen with invalid config")
}

func TestOpenUnknownEngine(t *testing.T) {
	cfg := testConfig()
	cfg.Browser.Engine = "opera"

	_, err := Open(context.Background(), cfg, newLauncher())
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
	assert.Equal(t, core.ErrCategorySetup, core.CategoryOf(err))
}

func TestOpenLaunchFailure(t *testing.T) {
	l := newLauncher()
	l.FailLaunch = errors.New("executable not found")

	_, err := Open(context.Background(), testConfig(), l)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.Contains(t, err.Error(), "executable not found")
}

func TestOpenPageFailureReleases(t *testing.T) {
	l := newLauncher()
	l.FailNewPage = errors.New("context crashed")

	_, err := Open(context.Background(), testConfig(), l)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.True(t, l.Browser.Closed)
	assert.True(t, l.Browser.Released)
}

func TestOpenNavigateFailureReleases(t *testing.T) {
	cfg := testConfig()
	cfg.Board.BaseURL = "https://elsewhere.test"
	l := newLauncher()

	_, err := Open(context.Background(), cfg, l)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.True(t, l.Browser.Closed)
	assert.True(t, l.Browser.Released)
}

func TestOpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newLauncher()

	_, err := Open(ctx, testConfig(), l)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, l.Browser)
}

func TestCloseAlwaysReleases(t *testing.T) {
	l := newLauncher()
	s, err := Open(context.Background(), testConfig(), l)
	require.NoError(t, err)

	l.FailClose = errors.New("browser hung")
	err = s.Close()
	assert.True(t, errors.Is(err, core.ErrTeardownFailure))
	assert.Contains(t, err.Error(), "browser hung")
	assert.True(t, l.Browser.Released, "release must run after a failed close")

	assert.NoError(t, s.Close(), "second Close is a no-op")
}

func TestCloseJoinsErrors(t *testing.T) {
	l := newLauncher()
	s, err := Open(context.Background(), testConfig(), l)
	require.NoError(t, err)

	l.FailClose = errors.New("close failed")
	l.FailRelease = errors.New("release failed")
	err = s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
	assert.Contains(t, err.Error(), "release failed")
}

func TestCloseNil(t *testing.T) {
	var s *Session
	assert.NoError(t, s.Close())
}
