// Package suite is the kanban acceptance suite: the ordered scenarios, their
// literal inputs and the shared fixture they operate on.
package suite

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/logger"
)

// Card is one card the suite creates.
type Card struct {
	List string
	Name string
}

// Data holds the literal inputs of the suite.
type Data struct {
	BoardName   string
	Lists       []string
	Cards       []Card
	DueDateCard string // Card that receives start and due dates
	DragCard    string // Card dragged to DragTo, then to the top of DragTo
	DragTo      string
	ArchiveCard string
}

// DefaultData returns the inputs of the pool maintenance board.
func DefaultData() Data {
	return Data{
		BoardName: "Bob's Pool Maintenance",
		Lists:     []string{"Prospects", "In Progress"},
		Cards: []Card{
			{List: "Prospects", Name: "Public Pool Amsterdam Renovation"},
			{List: "In Progress", Name: "New Public Pool - Delft"},
		},
		DueDateCard: "Public Pool Amsterdam Renovation",
		DragCard:    "Public Pool Amsterdam Renovation",
		DragTo:      "In Progress",
		ArchiveCard: "New Public Pool - Delft",
	}
}

// FromConfig returns DefaultData with the non-empty fields of o applied.
func FromConfig(o config.Data) Data {
	d := DefaultData()
	if o.BoardName != "" {
		d.BoardName = o.BoardName
	}
	if len(o.Lists) > 0 {
		d.Lists = append([]string(nil), o.Lists...)
	}
	if len(o.Cards) > 0 {
		d.Cards = make([]Card, len(o.Cards))
		for i, c := range o.Cards {
			d.Cards[i] = Card{List: c.List, Name: c.Name}
		}
	}
	if o.DueDateCard != "" {
		d.DueDateCard = o.DueDateCard
	}
	if o.DragCard != "" {
		d.DragCard = o.DragCard
	}
	if o.DragTo != "" {
		d.DragTo = o.DragTo
	}
	if o.ArchiveCard != "" {
		d.ArchiveCard = o.ArchiveCard
	}
	return d
}

// Validate rejects inputs the scenarios cannot work with and logs a warning
// for every pair of card names that are prefixes of one another in one list.
func (d Data) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return core.ErrInvalidConfig.WithMessage("suite data: " + fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(d.BoardName) == "" {
		return invalid("board name is empty")
	}
	if len(d.Lists) == 0 {
		return invalid("no lists")
	}
	lists := make(map[string]bool, len(d.Lists))
	for _, l := range d.Lists {
		if strings.TrimSpace(l) == "" {
			return invalid("list name is empty")
		}
		if lists[l] {
			return invalid("duplicate list %q", l)
		}
		lists[l] = true
	}

	cards := make(map[string]string, len(d.Cards))
	for _, c := range d.Cards {
		if strings.TrimSpace(c.Name) == "" {
			return invalid("card name is empty")
		}
		if !lists[c.List] {
			return invalid("card %q is in unknown list %q", c.Name, c.List)
		}
		if _, dup := cards[c.Name]; dup {
			return invalid("duplicate card %q", c.Name)
		}
		cards[c.Name] = c.List
	}

	for _, ref := range []struct{ field, card string }{
		{"dueDateCard", d.DueDateCard},
		{"dragCard", d.DragCard},
		{"archiveCard", d.ArchiveCard},
	} {
		if _, ok := cards[ref.card]; !ok {
			return invalid("%s %q is not one of the cards", ref.field, ref.card)
		}
	}
	if !lists[d.DragTo] {
		return invalid("dragTo %q is not one of the lists", d.DragTo)
	}
	if cards[d.DragCard] == d.DragTo {
		return invalid("dragCard %q is already in %q", d.DragCard, d.DragTo)
	}

	for _, w := range d.Warnings() {
		logger.Warn("suite data: %s", w)
	}
	return nil
}

// Warnings lists card names that position lookup cannot tell apart: within
// one list, the first card whose text contains a name wins.
func (d Data) Warnings() []string {
	var warnings []string
	layout := d.layoutAfterDrag()
	for _, list := range d.Lists {
		names := layout[list]
		for i, a := range names {
			for j, b := range names {
				if i != j && strings.Contains(b, a) {
					warnings = append(warnings, fmt.Sprintf("card %q is contained in card %q in list %q", a, b, list))
				}
			}
		}
	}
	return warnings
}

// CardsIn returns the cards created in list, in creation order.
func (d Data) CardsIn(list string) []string {
	var names []string
	for _, c := range d.Cards {
		if c.List == list {
			names = append(names, c.Name)
		}
	}
	return names
}

// listOf returns the list the card is in once DragCard has moved.
func (d Data) listOf(card string) string {
	if card == d.DragCard {
		return d.DragTo
	}
	for _, c := range d.Cards {
		if c.Name == card {
			return c.List
		}
	}
	return ""
}

// layoutAfterDrag is every list's cards once DragCard sits at the top of DragTo.
func (d Data) layoutAfterDrag() map[string][]string {
	layout := make(map[string][]string, len(d.Lists))
	for _, l := range d.Lists {
		for _, name := range d.CardsIn(l) {
			if name != d.DragCard {
				layout[l] = append(layout[l], name)
			}
		}
	}
	layout[d.DragTo] = append([]string{d.DragCard}, layout[d.DragTo]...)
	return layout
}
