package suite

import (
	"github.com/stretchr/testify/assert"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/executor"
	"github.com/devicelab-dev/board-runner/pkg/scenario"
)

// Conditions passed between scenarios.
const (
	condLoggedIn = "logged-in"
	condBoard    = "board"
	condDueDate  = "due-date"
	condMoved    = "card-moved"
)

func condList(name string) string { return "list:" + name }
func condCard(name string) string { return "card:" + name }

// DateFormat is how the due date badge renders a day ("Jan 02").
const DateFormat = "Jan 02"

// Scenarios returns the ordered plan. Every scenario works on the state left
// by the ones before it. fx is only dereferenced when a scenario runs.
func Scenarios(fx *Fixture, d Data) []scenario.Scenario {
	listCases := make([]scenario.Case, len(d.Lists))
	for i, l := range d.Lists {
		listCases[i] = scenario.Case{
			Args:     scenario.Args{"list": l},
			Provides: []string{condList(l)},
		}
	}

	cardCases := make([]scenario.Case, len(d.Cards))
	for i, c := range d.Cards {
		cardCases[i] = scenario.Case{
			Args:     scenario.Args{"list": c.List, "card": c.Name},
			Requires: []string{condList(c.List)},
			Provides: []string{condCard(c.Name)},
		}
	}

	destBefore := len(d.CardsIn(d.DragTo))
	archiveList := d.listOf(d.ArchiveCard)
	archiveRemaining := len(d.layoutAfterDrag()[archiveList]) - 1

	return []scenario.Scenario{
		{
			Name:     "Login with Valid User Credentials",
			Provides: []string{condLoggedIn},
			Run: func(t *scenario.T, _ scenario.Args) error {
				if err := fx.Login.Login(fx.Email, fx.Password); err != nil {
					return err
				}
				if err := fx.Login.WaitForURL("**/boards"); err != nil {
					return err
				}
				title, err := fx.Login.Title()
				if err != nil {
					return err
				}
				assert.Equal(t, "Boards | Trello", title)
				t.Logf("logged in as %s", fx.Email)
				return nil
			},
		},
		{
			Name:     "Create Trello Board",
			Requires: []string{condLoggedIn},
			Provides: []string{condBoard},
			Run: func(t *scenario.T, _ scenario.Args) error {
				if err := fx.Boards.CreateBoard(d.BoardName); err != nil {
					return err
				}
				name, err := fx.Boards.BoardName()
				if err != nil {
					return err
				}
				assert.Equal(t, d.BoardName, name)
				return nil
			},
		},
		{
			Name:     "Add List on Board: {list}",
			Requires: []string{condBoard},
			Cases:    listCases,
			Run: func(t *scenario.T, a scenario.Args) error {
				list := a.Get("list")
				if err := fx.Boards.AddListToBoard(list); err != nil {
					return err
				}
				name, err := fx.Boards.ListName(list)
				if err != nil {
					return err
				}
				assert.Equal(t, list, name)
				return nil
			},
		},
		{
			Name:  "Add Card '{card}' to List '{list}'",
			Cases: cardCases,
			Run: func(t *scenario.T, a scenario.Args) error {
				list, card := a.Get("list"), a.Get("card")
				if err := fx.Boards.AddCardToList(list, card); err != nil {
					return err
				}
				name, err := fx.Boards.CardName(card)
				if err != nil {
					return err
				}
				assert.Equal(t, card, name)
				return nil
			},
		},
		{
			Name:     "Add date to the card",
			Requires: []string{condCard(d.DueDateCard)},
			Provides: []string{condDueDate},
			Run: func(t *scenario.T, _ scenario.Args) error {
				if err := fx.Boards.AddDateToCard(d.DueDateCard); err != nil {
					return err
				}
				badge, err := fx.Boards.DueDateText(d.DueDateCard)
				if err != nil {
					return err
				}
				today := fx.Now().Format(DateFormat)
				assert.Contains(t, badge, today)
				t.Logf("badge reads %q", badge)
				return nil
			},
		},
		{
			Name:     "Drag a card between lists",
			Requires: []string{condCard(d.DragCard), condList(d.DragTo)},
			Provides: []string{condMoved},
			Run: func(t *scenario.T, _ scenario.Args) error {
				if err := fx.Boards.DragCardBetweenLists(d.DragCard, d.DragTo); err != nil {
					return err
				}
				return assertPosition(t, fx, d.DragCard, d.DragTo, destBefore, destBefore+1)
			},
		},
		{
			Name:     "Move a selected card within a list",
			Requires: []string{condMoved},
			Run: func(t *scenario.T, _ scenario.Args) error {
				if err := fx.Boards.DragCardWithinList(d.DragCard, d.DragTo); err != nil {
					return err
				}
				return assertPosition(t, fx, d.DragCard, d.DragTo, 0, destBefore+1)
			},
		},
		{
			Name:     "Archive a card in a list",
			Requires: []string{condCard(d.ArchiveCard), condMoved},
			Run: func(t *scenario.T, _ scenario.Args) error {
				if err := fx.Boards.ArchiveCard(d.ArchiveCard); err != nil {
					return err
				}
				count, err := fx.Boards.CardCount(archiveList)
				if err != nil {
					return err
				}
				assert.Equal(t, archiveRemaining, count, "cards left in %q", archiveList)
				visible, err := fx.Boards.IsCardVisible(d.ArchiveCard)
				if err != nil {
					return err
				}
				assert.False(t, visible, "archived card %q is still visible", d.ArchiveCard)
				return nil
			},
		},
	}
}

func assertPosition(t *scenario.T, fx *Fixture, card, list string, wantIndex, wantCount int) error {
	index, err := fx.Boards.CardIndexInList(card, list)
	if err != nil {
		return err
	}
	count, err := fx.Boards.CardCount(list)
	if err != nil {
		return err
	}
	assert.Equal(t, wantIndex, index, "position of %q in %q", card, list)
	assert.Equal(t, wantCount, count, "cards in %q", list)
	return nil
}

// Plan validates the suite inputs from cfg and returns the plan for listing.
// The returned scenarios must not be run.
func Plan(cfg *config.Config) ([]scenario.Scenario, error) {
	d := FromConfig(cfg.Data)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	plan := Scenarios(nil, d)
	if err := scenario.ValidatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Build returns the executor hook that builds the plan on a live page.
func Build(cfg *config.Config) executor.BuildFunc {
	return func(drv core.Driver) ([]scenario.Scenario, error) {
		d := FromConfig(cfg.Data)
		if err := d.Validate(); err != nil {
			return nil, err
		}
		return Scenarios(NewFixture(drv, cfg), d), nil
	}
}
