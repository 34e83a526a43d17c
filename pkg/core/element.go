package core

import (
	"fmt"

	"github.com/devicelab-dev/board-runner/pkg/locator"
)

// InvalidElement is returned by Find for a selector no driver can resolve.
// Every operation fails with ErrInvalidConfig.
type InvalidElement struct {
	Sel locator.Selector
	Err error
}

// CheckSelector returns nil when sel is resolvable, otherwise an InvalidElement.
// Drivers call it at the top of Find.
func CheckSelector(sel locator.Selector) Element {
	if err := sel.Validate(); err != nil {
		return &InvalidElement{Sel: sel, Err: err}
	}
	return nil
}

// Reason is the error every operation returns.
func (e *InvalidElement) Reason() error {
	return ErrInvalidConfig.WithMessage(fmt.Sprintf("invalid locator %s", e.Sel)).WithCause(e.Err)
}

func (e *InvalidElement) Selector() locator.Selector       { return e.Sel }
func (e *InvalidElement) Click() error                     { return e.Reason() }
func (e *InvalidElement) RightClick() error                { return e.Reason() }
func (e *InvalidElement) Fill(string) error                { return e.Reason() }
func (e *InvalidElement) InnerText() (string, error)       { return "", e.Reason() }
func (e *InvalidElement) AllInnerTexts() ([]string, error) { return nil, e.Reason() }
func (e *InvalidElement) IsVisible() (bool, error)         { return false, e.Reason() }
func (e *InvalidElement) Count() (int, error)              { return 0, e.Reason() }
func (e *InvalidElement) DragTo(Element) error             { return e.Reason() }
