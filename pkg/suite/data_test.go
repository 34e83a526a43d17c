package suite

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
)

func TestDefaultDataValid(t *testing.T) {
	d := DefaultData()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if w := d.Warnings(); len(w) != 0 {
		t.Errorf("Warnings() = %v, want none", w)
	}
}

func TestFromConfig(t *testing.T) {
	d := FromConfig(config.Data{
		BoardName: "Sprint",
		Cards:     []config.CardData{{List: "Prospects", Name: "One"}},
	})
	if d.BoardName != "Sprint" {
		t.Errorf("BoardName = %q", d.BoardName)
	}
	if len(d.Lists) != 2 || d.Lists[0] != "Prospects" {
		t.Errorf("Lists = %v, want defaults", d.Lists)
	}
	if len(d.Cards) != 1 || d.Cards[0].Name != "One" {
		t.Errorf("Cards = %v", d.Cards)
	}
	if d.DragTo != "In Progress" {
		t.Errorf("DragTo = %q, want default", d.DragTo)
	}
}

func TestDataValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *Data)
	}{
		{"empty board", func(d *Data) { d.BoardName = " " }},
		{"no lists", func(d *Data) { d.Lists = nil }},
		{"empty list", func(d *Data) { d.Lists = append(d.Lists, "") }},
		{"duplicate list", func(d *Data) { d.Lists = append(d.Lists, "Prospects") }},
		{"empty card", func(d *Data) { d.Cards = append(d.Cards, Card{List: "Prospects"}) }},
		{"unknown list", func(d *Data) { d.Cards = append(d.Cards, Card{List: "Done", Name: "x"}) }},
		{"duplicate card", func(d *Data) { d.Cards = append(d.Cards, d.Cards[0]) }},
		{"unknown due card", func(d *Data) { d.DueDateCard = "nope" }},
		{"unknown drag card", func(d *Data) { d.DragCard = "nope" }},
		{"unknown archive card", func(d *Data) { d.ArchiveCard = "nope" }},
		{"unknown drag list", func(d *Data) { d.DragTo = "Done" }},
		{"drag within own list", func(d *Data) { d.DragTo = "Prospects" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultData()
			tt.modify(&d)
			err := d.Validate()
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestDataWarnings(t *testing.T) {
	d := DefaultData()
	d.Cards = append(d.Cards, Card{List: "In Progress", Name: "New Public Pool"})

	if err := d.Validate(); err != nil {
		t.Fatalf("prefix names must only warn, got %v", err)
	}
	w := d.Warnings()
	if len(w) != 1 {
		t.Fatalf("Warnings() = %v, want 1", w)
	}
}

func TestCardsIn(t *testing.T) {
	d := DefaultData()
	got := d.CardsIn("In Progress")
	if len(got) != 1 || got[0] != "New Public Pool - Delft" {
		t.Errorf("CardsIn() = %v", got)
	}
	if got := d.listOf(d.DragCard); got != "In Progress" {
		t.Errorf("listOf(drag card) = %q", got)
	}
	if got := d.listOf(d.ArchiveCard); got != "In Progress" {
		t.Errorf("listOf(archive card) = %q", got)
	}
}
