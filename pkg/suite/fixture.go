package suite

import (
	"time"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/pages"
)

// Fixture is the context shared by reference across every scenario of a run.
type Fixture struct {
	Login  *pages.LoginPage
	Boards *pages.BoardsPage

	Email    string
	Password string

	// Now is the clock used for date assertions.
	Now func() time.Time
}

// NewFixture builds page objects on the live page of an open session.
func NewFixture(d core.Driver, cfg *config.Config) *Fixture {
	return &Fixture{
		Login:    pages.NewLoginPage(d),
		Boards:   pages.NewBoardsPage(d),
		Email:    cfg.Board.Email,
		Password: cfg.Board.Password,
		Now:      time.Now,
	}
}
