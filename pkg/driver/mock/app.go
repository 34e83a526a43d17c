package mock

import (
	"fmt"
	"strings"
	"time"
)

// Card is a card on a simulated board.
type Card struct {
	Name  string
	Start *time.Time
	Due   *time.Time
}

// List is an ordered column of cards.
type List struct {
	Name  string
	Cards []*Card
}

// Board is a simulated board.
type Board struct {
	Name  string
	Lists []*List
	id    string
}

// Index returns the position of the card in the list, or -1.
func (l *List) Index(c *Card) int {
	for i, x := range l.Cards {
		if x == c {
			return i
		}
	}
	return -1
}

// Names returns the card names in order.
func (l *List) Names() []string {
	names := make([]string, len(l.Cards))
	for i, c := range l.Cards {
		names[i] = c.Name
	}
	return names
}

// List returns the first list with the given name, or nil.
func (b *Board) List(name string) *List {
	for _, l := range b.Lists {
		if l.Name == name {
			return l
		}
	}
	return nil
}

type screen int

const (
	screenLanding screen = iota
	screenLogin
	screenBoards
	screenBoard
)

const (
	listPlaceholder = "Enter list name…"
	cardPlaceholder = "Enter a title for this card…"
	dateLayout      = "Jan 02"
)

// App is the simulated kanban application behind the mock driver.
// State changes only through gestures on rendered nodes and Navigate.
type App struct {
	BaseURL  string
	Email    string // Accepted credentials; empty accepts any non-empty value
	Password string
	Now      func() time.Time

	Boards   []*Board
	Archived []*Card

	screen   screen
	url      string
	title    string
	loggedIn bool

	// login form
	username     string
	password     string
	passwordStep bool
	loginError   string

	// header
	menuOpen   bool
	createOpen bool
	boardTitle string

	// board
	board        *Board
	listComposer bool
	listInput    string
	cardComposer *List
	cardInput    string
	openCard     *Card
	datesOpen    bool
	startOn      bool
	dueOn        bool
	quickCard    *Card
}

// NewApp creates an application served at baseURL that accepts the given credentials.
func NewApp(baseURL, email, password string) *App {
	return &App{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Email:    email,
		Password: password,
		Now:      time.Now,
	}
}

// CurrentBoard returns the open board, or nil.
func (a *App) CurrentBoard() *Board {
	return a.board
}

// navigate loads url. Only URLs under BaseURL resolve.
func (a *App) navigate(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("navigate: empty URL")
	}
	if a.BaseURL == "" || !strings.HasPrefix(url, a.BaseURL) {
		return fmt.Errorf("navigate %s: net::ERR_NAME_NOT_RESOLVED", url)
	}

	path := strings.Trim(strings.TrimPrefix(url, a.BaseURL), "/")
	switch {
	case path == "login":
		a.showLogin()
	case strings.HasPrefix(path, "b/") && a.loggedIn:
		for _, b := range a.Boards {
			if strings.HasPrefix(path, "b/"+b.id+"/") {
				a.showBoard(b)
				return nil
			}
		}
		a.showBoards()
	case a.loggedIn:
		a.showBoards()
	default:
		a.screen = screenLanding
		a.url = a.BaseURL + "/"
		a.title = "Manage Your Team's Projects From Anywhere | Trello"
	}
	return nil
}

func (a *App) showLogin() {
	a.screen = screenLogin
	a.url = a.BaseURL + "/login"
	a.title = "Log in to continue - Log in with Atlassian account"
	a.username, a.password, a.passwordStep, a.loginError = "", "", false, ""
}

func (a *App) showBoards() {
	a.screen = screenBoards
	user := a.username
	if i := strings.Index(user, "@"); i >= 0 {
		user = user[:i]
	}
	a.url = a.BaseURL + "/u/" + slug(user) + "/boards"
	a.title = "Boards | Trello"
	a.board = nil
	a.closeHeader()
}

func (a *App) showBoard(b *Board) {
	a.screen = screenBoard
	a.board = b
	a.url = a.BaseURL + "/b/" + b.id + "/" + slug(b.Name)
	a.title = b.Name + " | Trello"
	a.cardComposer, a.openCard, a.quickCard, a.datesOpen = nil, nil, nil, false
	a.closeHeader()
}

func (a *App) closeHeader() {
	a.menuOpen, a.createOpen, a.boardTitle = false, false, ""
}

func (a *App) submitLogin() {
	a.loginError = ""
	if !a.passwordStep {
		if strings.TrimSpace(a.username) == "" {
			a.loginError = "Enter an email address"
			return
		}
		a.passwordStep = true
		return
	}
	if !a.credentialsMatch() {
		a.loginError = "Incorrect email address and / or password."
		return
	}
	a.loggedIn = true
	a.showBoards()
}

func (a *App) credentialsMatch() bool {
	if a.username == "" || a.password == "" {
		return false
	}
	if a.Email != "" && a.username != a.Email {
		return false
	}
	if a.Password != "" && a.password != a.Password {
		return false
	}
	return true
}

func (a *App) createBoard() {
	name := strings.TrimSpace(a.boardTitle)
	if name == "" {
		return
	}
	b := &Board{Name: name, id: fmt.Sprintf("b%04d", len(a.Boards)+1)}
	a.Boards = append(a.Boards, b)
	a.showBoard(b)
	// A new board opens with the list composer ready.
	a.listComposer = true
	a.listInput = ""
}

func (a *App) addList() {
	name := strings.TrimSpace(a.listInput)
	if name == "" || a.board == nil {
		return
	}
	a.board.Lists = append(a.board.Lists, &List{Name: name})
	a.listInput = ""
}

func (a *App) addCard() {
	name := strings.TrimSpace(a.cardInput)
	if name == "" || a.cardComposer == nil {
		return
	}
	a.cardComposer.Cards = append(a.cardComposer.Cards, &Card{Name: name})
	a.cardInput = ""
}

func (a *App) closeComposers() {
	a.listComposer = false
	a.listInput = ""
	a.cardComposer = nil
	a.cardInput = ""
}

func (a *App) openDetails(c *Card) {
	a.closeComposers()
	a.quickCard = nil
	a.openCard = c
	a.datesOpen = false
}

func (a *App) openDates() {
	if a.openCard == nil {
		return
	}
	a.datesOpen = true
	a.startOn = a.openCard.Start != nil
	// The due date is preselected on a card without dates.
	a.dueOn = a.openCard.Due != nil || a.openCard.Start == nil
}

func (a *App) saveDates() {
	c := a.openCard
	if c == nil {
		return
	}
	today := a.Now()
	c.Start, c.Due = nil, nil
	if a.startOn {
		start := today
		c.Start = &start
	}
	if a.dueOn {
		due := today.AddDate(0, 0, 1)
		c.Due = &due
	}
	a.datesOpen = false
}

func (a *App) archive(c *Card) {
	for _, l := range a.board.Lists {
		if i := l.Index(c); i >= 0 {
			l.Cards = append(l.Cards[:i], l.Cards[i+1:]...)
			a.Archived = append(a.Archived, c)
			break
		}
	}
	a.quickCard = nil
}

// move removes c from its list and inserts it into dest before onto,
// or at the end when onto is nil.
func (a *App) move(c *Card, dest *List, onto *Card) {
	if c == onto {
		return
	}
	for _, l := range a.board.Lists {
		if i := l.Index(c); i >= 0 {
			l.Cards = append(l.Cards[:i], l.Cards[i+1:]...)
			break
		}
	}
	at := len(dest.Cards)
	if onto != nil {
		if i := dest.Index(onto); i >= 0 {
			at = i
		}
	}
	dest.Cards = append(dest.Cards, nil)
	copy(dest.Cards[at+1:], dest.Cards[at:])
	dest.Cards[at] = c
}

// render builds the element tree for the current state.
func (a *App) render() *Node {
	body := el("body")
	switch a.screen {
	case screenLanding:
		body.append(el("header",
			el("a").text("Log in").click(a.showLogin),
			el("a").text("Get Trello for free"),
		))
	case screenLogin:
		body.append(a.renderLogin())
	case screenBoards:
		body.append(a.renderHeader(), a.renderBoardTiles())
	case screenBoard:
		body.append(a.renderHeader(), a.renderBoard())
	}
	return el("html", body)
}

func (a *App) renderLogin() *Node {
	form := el("form",
		el("h1").text("Log in to continue"),
		el("input").id("username").field("Enter your email", a.username, func(v string) { a.username = v }),
	)
	submit := "Continue"
	if a.passwordStep {
		form.append(el("input").id("password").field("Enter password", a.password, func(v string) { a.password = v }))
		submit = "Log in"
	}
	if a.loginError != "" {
		form.append(el("div").testID("login-error").text(a.loginError))
	}
	form.append(el("button").id("login-submit").text(submit).click(a.submitLogin))
	return form
}

func (a *App) renderHeader() *Node {
	header := el("header",
		el("span").text("Home").click(a.showBoards),
		el("button").testID("AddIcon").label("Create board or Workspace").click(func() {
			a.menuOpen = !a.menuOpen
			a.createOpen = false
		}),
	)
	if a.menuOpen {
		openForm := func() {
			a.menuOpen = false
			a.createOpen = true
			a.boardTitle = ""
		}
		header.append(el("section",
			el("button", el("span").text("Create board").click(openForm)).click(openForm),
		))
	}
	if a.createOpen {
		header.append(el("section",
			el("input").testID("create-board-title-input").field("", a.boardTitle, func(v string) { a.boardTitle = v }),
			el("button").testID("create-board-submit-button").text("Create").click(a.createBoard),
		))
	}
	return header
}

func (a *App) renderBoardTiles() *Node {
	tiles := el("ul")
	for _, b := range a.Boards {
		b := b
		tiles.append(el("li", el("a").text(b.Name).click(func() { a.showBoard(b) })))
	}
	return el("main", el("h3").text("YOUR WORKSPACES"), tiles)
}

func (a *App) renderBoard() *Node {
	b := a.board
	lists := el("ol").testID("lists")
	for _, l := range b.Lists {
		lists.append(el("li", a.renderList(l)))
	}

	composer := el("li")
	if a.listComposer {
		composer.append(
			el("textarea").field(listPlaceholder, a.listInput, func(v string) { a.listInput = v }),
			el("button").testID("list-composer-add-list-button").text("Add list").click(a.addList),
		)
	} else {
		composer.append(el("button").testID("list-composer-button").text("Add another list").click(func() {
			a.closeComposers()
			a.listComposer = true
		}))
	}
	lists.append(composer)

	content := el("main", el("h1").testID("board-name-display").text(b.Name), lists)
	if a.openCard != nil {
		content.append(a.renderCardDetails(a.openCard))
	}
	if a.quickCard != nil {
		c := a.quickCard
		content.append(el("div",
			el("textarea").field("", c.Name, nil),
			el("button").testID("quick-card-editor-archive").text("Archive").click(func() { a.archive(c) }),
		).testID("quick-card-editor"))
	}
	return content
}

func (a *App) renderList(l *List) *Node {
	cards := el("ol").testID("list-cards")
	for _, c := range l.Cards {
		cards.append(a.renderCard(l, c))
	}

	list := el("div",
		el("div", el("h2").testID("list-name").text(l.Name)),
		cards,
	).testID("list")

	if a.cardComposer == l {
		list.append(el("div",
			el("textarea").testID("list-card-composer-textarea").field(cardPlaceholder, a.cardInput, func(v string) { a.cardInput = v }),
			el("button").testID("list-card-composer-add-card-button").text("Add card").click(a.addCard),
		))
	} else {
		add := el("button").testID("list-add-card-button").text("Add a card").click(func() {
			a.closeComposers()
			a.cardComposer = l
		})
		add.dropList = l
		list.append(add)
	}
	return list
}

func (a *App) renderCard(l *List, c *Card) *Node {
	name := el("a").testID("card-name").text(c.Name).
		click(func() { a.openDetails(c) }).
		rightClick(func() {
			a.closeComposers()
			a.openCard = nil
			a.quickCard = c
		})
	name.card, name.dropList, name.dropOnto = c, l, c

	item := el("li", name).testID("list-card")
	item.card, item.dropList, item.dropOnto = c, l, c

	if badge := dateBadge(c); badge != "" {
		item.append(el("span",
			el("span",
				el("span").testID("clock-icon"),
				el("span").text(badge),
			).testID("badge-due-date-not-completed"),
		).testID("badges"))
	}
	return item
}

func (a *App) renderCardDetails(c *Card) *Node {
	details := el("div",
		el("button").label("Close dialog").click(func() {
			a.openCard = nil
			a.datesOpen = false
		}),
		el("h2").testID("card-back-title").text(c.Name),
		el("button").testID("card-back-due-date-button").text("Dates").click(a.openDates),
	).testID("card-back-window")

	if a.datesOpen {
		details.append(el("section",
			el("div",
				el("label").text("Start date"),
				el("label").testID("clickable-checkbox").click(func() { a.startOn = !a.startOn }),
			),
			el("div",
				el("label").text("Due date"),
				el("label").testID("clickable-checkbox").click(func() { a.dueOn = !a.dueOn }),
			),
			el("button").testID("save-date-button").text("Save").click(a.saveDates),
		).testID("datepicker-popover"))
	}
	return details
}

func dateBadge(c *Card) string {
	switch {
	case c.Start != nil && c.Due != nil:
		return c.Start.Format(dateLayout) + " - " + c.Due.Format(dateLayout)
	case c.Start != nil:
		return "Started: " + c.Start.Format(dateLayout)
	case c.Due != nil:
		return c.Due.Format(dateLayout)
	}
	return ""
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
