package pages

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

// Board screen locators, most stable strategy available per element.
var (
	homeLink          = locator.Tag("span").WithText("Home")
	createButton      = locator.TestID("AddIcon")
	createBoardOption = locator.Tag("span").WithText("Create board")
	boardTitleInput   = locator.TestID("create-board-title-input")
	submitBoardButton = locator.TestID("create-board-submit-button")
	boardNameDisplay  = locator.TestID("board-name-display")
	addListButton     = locator.TestID("list-composer-button")
	listNameInput     = locator.Placeholder("Enter list name…")
	createListButton  = locator.TestID("list-composer-add-list-button")
	cardTextArea      = locator.TestID("list-card-composer-textarea")
	createCardButton  = locator.TestID("list-card-composer-add-card-button")
	datesButton       = locator.TestID("card-back-due-date-button")
	startDateCheckBox = locator.TestID("clickable-checkbox").FollowingSibling(locator.Tag("label").WithText("Start date"))
	dueDateCheckBox   = locator.TestID("clickable-checkbox").FollowingSibling(locator.Tag("label").WithText("Due date"))
	saveDateButton    = locator.TestID("save-date-button")
	closeCardDetails  = locator.Label("Close dialog")
	archiveButton     = locator.TestID("quick-card-editor-archive")
)

func listByName(name string) locator.Selector {
	return locator.TestID("list").Having(locator.TestID("list-name").WithText(name))
}

func listNameHeading(name string) locator.Selector {
	return locator.TestID("list-name").WithText(name)
}

func addCardButton(listName string) locator.Selector {
	return locator.TestID("list-add-card-button").In(listByName(listName))
}

func cardName(name string) locator.Selector {
	return locator.TestID("card-name").WithText(name)
}

func cardsInList(listName string) locator.Selector {
	return locator.TestID("list-card").In(listByName(listName))
}

func dueDateBadge(card string) locator.Selector {
	item := locator.TestID("list-card").Having(cardName(card))
	badge := locator.TestID("badge-due-date-not-completed").In(item)
	return locator.Tag("span").In(badge).Last()
}

// BoardsPage covers the boards overview, a board, its lists and cards.
type BoardsPage struct {
	*BasePage
}

// NewBoardsPage creates the boards page object.
func NewBoardsPage(driver core.Driver) *BoardsPage {
	return &BoardsPage{BasePage: NewBasePage(driver)}
}

// Click actions

// ClickHome returns to the boards overview.
func (p *BoardsPage) ClickHome() error { return p.click("home link", homeLink) }

// ClickCreateButton opens the create menu in the header.
func (p *BoardsPage) ClickCreateButton() error { return p.click("create button", createButton) }

// ClickCreateBoardOption picks "Create board" in the create menu.
func (p *BoardsPage) ClickCreateBoardOption() error {
	return p.click("create board option", createBoardOption)
}

// ClickSubmitCreateBoard submits the new board form.
func (p *BoardsPage) ClickSubmitCreateBoard() error {
	return p.click("create board submit", submitBoardButton)
}

// ClickAddListButton opens the list composer.
func (p *BoardsPage) ClickAddListButton() error { return p.click("add list button", addListButton) }

// ClickCreateListButton submits the list composer.
func (p *BoardsPage) ClickCreateListButton() error {
	return p.click("create list button", createListButton)
}

// ClickAddCardButton opens the card composer of a list.
func (p *BoardsPage) ClickAddCardButton(listName string) error {
	return p.click(fmt.Sprintf("add card button of list %q", listName), addCardButton(listName))
}

// ClickCreateCardButton submits the card composer.
func (p *BoardsPage) ClickCreateCardButton() error {
	return p.click("create card button", createCardButton)
}

// ClickCardName opens the card details.
func (p *BoardsPage) ClickCardName(name string) error {
	return p.click(fmt.Sprintf("card %q", name), cardName(name))
}

// RightClickCardName opens the quick card editor.
func (p *BoardsPage) RightClickCardName(name string) error {
	if err := p.find(cardName(name)).RightClick(); err != nil {
		return fmt.Errorf("right-click card %q: %w", name, err)
	}
	return nil
}

// ClickDatesButton opens the date editor in the card details.
func (p *BoardsPage) ClickDatesButton() error { return p.click("dates button", datesButton) }

// CheckStartDate toggles the start date.
func (p *BoardsPage) CheckStartDate() error {
	return p.click("start date checkbox", startDateCheckBox)
}

// CheckDueDate toggles the due date.
func (p *BoardsPage) CheckDueDate() error { return p.click("due date checkbox", dueDateCheckBox) }

// ClickSaveDate saves the date editor.
func (p *BoardsPage) ClickSaveDate() error { return p.click("save date button", saveDateButton) }

// ClickCloseCardDetails closes the card details dialog.
func (p *BoardsPage) ClickCloseCardDetails() error {
	return p.click("close card details", closeCardDetails)
}

// ClickArchive archives the card open in the quick editor.
func (p *BoardsPage) ClickArchive() error { return p.click("archive button", archiveButton) }

// Fill actions

// FillBoardTitle types the new board title.
func (p *BoardsPage) FillBoardTitle(title string) error {
	return p.fill("board title", boardTitleInput, title)
}

// FillListName types the new list name.
func (p *BoardsPage) FillListName(name string) error {
	return p.fill("list name", listNameInput, name)
}

// FillCardName types the new card name.
func (p *BoardsPage) FillCardName(name string) error {
	return p.fill("card name", cardTextArea, name)
}

// Reads

// BoardName returns the displayed name of the open board.
func (p *BoardsPage) BoardName() (string, error) {
	return p.innerText("board name", boardNameDisplay)
}

// ListName returns the heading of the list named name.
func (p *BoardsPage) ListName(name string) (string, error) {
	return p.innerText(fmt.Sprintf("list %q", name), listNameHeading(name))
}

// CardName returns the displayed name of the card named name.
func (p *BoardsPage) CardName(name string) (string, error) {
	return p.innerText(fmt.Sprintf("card %q", name), cardName(name))
}

// DueDateText returns the date shown on the card's due date badge.
func (p *BoardsPage) DueDateText(card string) (string, error) {
	return p.innerText(fmt.Sprintf("due date of card %q", card), dueDateBadge(card))
}

// IsCardVisible reports whether a card with the name is rendered.
func (p *BoardsPage) IsCardVisible(name string) (bool, error) {
	return p.find(cardName(name)).IsVisible()
}

// IsAddListButtonVisible reports whether the list composer is closed.
func (p *BoardsPage) IsAddListButtonVisible() (bool, error) {
	return p.find(addListButton).IsVisible()
}

// CardCount returns the number of cards in the list.
func (p *BoardsPage) CardCount(listName string) (int, error) {
	n, err := p.find(cardsInList(listName)).Count()
	if err != nil {
		return 0, fmt.Errorf("count cards in list %q: %w", listName, err)
	}
	return n, nil
}

// CardIndexInList returns the position of the first card in the list whose
// text contains name, or -1. The match is a substring match so badges rendered
// inside the card do not break it; card names must not be prefixes of one another.
func (p *BoardsPage) CardIndexInList(name, listName string) (int, error) {
	texts, err := p.find(cardsInList(listName)).AllInnerTexts()
	if err != nil {
		return -1, fmt.Errorf("read cards in list %q: %w", listName, err)
	}
	return IndexContaining(texts, name), nil
}

// IndexContaining returns the index of the first text containing name, or -1.
func IndexContaining(texts []string, name string) int {
	for i, t := range texts {
		if strings.Contains(t, name) {
			return i
		}
	}
	return -1
}

// Composed operations

// CreateBoard opens the create menu and submits a board named name.
func (p *BoardsPage) CreateBoard(name string) error {
	return p.run(fmt.Sprintf("create board %q", name),
		p.ClickCreateButton,
		p.ClickCreateBoardOption,
		func() error { return p.FillBoardTitle(name) },
		p.ClickSubmitCreateBoard,
	)
}

// AddListToBoard adds a list. The composer is only opened when it is closed,
// so an already open composer is reused.
func (p *BoardsPage) AddListToBoard(name string) error {
	visible, err := p.IsAddListButtonVisible()
	if err != nil {
		return fmt.Errorf("add list %q: %w", name, err)
	}
	steps := []func() error{}
	if visible {
		steps = append(steps, p.ClickAddListButton)
	}
	steps = append(steps,
		func() error { return p.FillListName(name) },
		p.ClickCreateListButton,
	)
	return p.run(fmt.Sprintf("add list %q", name), steps...)
}

// AddCardToList adds a card at the end of a list. The composer stays open
// after a card is added, so when the list's "add a card" button is hidden
// the composer already open in that list is reused.
func (p *BoardsPage) AddCardToList(listName, card string) error {
	op := fmt.Sprintf("add card %q to list %q", card, listName)
	visible, err := p.find(addCardButton(listName)).IsVisible()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !visible {
		return p.run(op,
			func() error { return p.fill("card name", cardTextArea.In(listByName(listName)), card) },
			p.ClickCreateCardButton,
		)
	}
	return p.run(op,
		func() error { return p.ClickAddCardButton(listName) },
		func() error { return p.FillCardName(card) },
		p.ClickCreateCardButton,
	)
}

// AddDateToCard opens the card, toggles start and due date, saves and closes.
// A failing step leaves the card details open.
func (p *BoardsPage) AddDateToCard(card string) error {
	return p.run(fmt.Sprintf("add date to card %q", card),
		func() error { return p.ClickCardName(card) },
		p.ClickDatesButton,
		p.CheckStartDate,
		p.CheckDueDate,
		p.ClickSaveDate,
		p.ClickCloseCardDetails,
	)
}

// DragCardBetweenLists drops a card on the "add a card" affordance of
// destList, appending it there.
func (p *BoardsPage) DragCardBetweenLists(card, destList string) error {
	if err := p.find(cardName(card)).DragTo(p.find(addCardButton(destList))); err != nil {
		return fmt.Errorf("drag card %q to list %q: %w", card, destList, err)
	}
	return nil
}

// DragCardWithinList drops a card on the first card of listName.
func (p *BoardsPage) DragCardWithinList(card, listName string) error {
	first := p.find(cardsInList(listName).First())
	if err := p.find(cardName(card)).DragTo(first); err != nil {
		return fmt.Errorf("drag card %q to top of list %q: %w", card, listName, err)
	}
	return nil
}

// ArchiveCard archives a card through the quick card editor.
func (p *BoardsPage) ArchiveCard(card string) error {
	return p.run(fmt.Sprintf("archive card %q", card),
		func() error { return p.RightClickCardName(card) },
		p.ClickArchive,
	)
}
