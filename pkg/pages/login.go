package pages

import (
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

var (
	loginLink   = locator.Tag("a").WithText("Log in").First()
	usernameBox = locator.ID("username")
	passwordBox = locator.ID("password")
	loginSubmit = locator.ID("login-submit")
)

// LoginPage covers the landing page link and the two-step login form.
type LoginPage struct {
	*BasePage
}

// NewLoginPage creates the login page object.
func NewLoginPage(driver core.Driver) *LoginPage {
	return &LoginPage{BasePage: NewBasePage(driver)}
}

// ClickLoginLink opens the login form from the landing page.
func (p *LoginPage) ClickLoginLink() error { return p.click("login link", loginLink) }

// EnterEmail fills the username field.
func (p *LoginPage) EnterEmail(email string) error { return p.fill("email", usernameBox, email) }

// EnterPassword fills the password field.
func (p *LoginPage) EnterPassword(password string) error {
	return p.fill("password", passwordBox, password)
}

// ClickSubmit presses the continue / log in button.
func (p *LoginPage) ClickSubmit() error { return p.click("login submit", loginSubmit) }

// Login logs in: link, email, continue, password, submit.
func (p *LoginPage) Login(username, password string) error {
	return p.run("login",
		p.ClickLoginLink,
		func() error { return p.EnterEmail(username) },
		p.ClickSubmit,
		func() error { return p.EnterPassword(password) },
		p.ClickSubmit,
	)
}
