package composer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Setter writes value into a located element
type Setter func(ctx context.Context, el Element, value string) error

// Matcher pairs a selector with the way its element is written
type Matcher struct {
	Selector string
	Setter   Setter
}

// Strategy is an ordered matcher list evaluated lazily; the first element
// that is found and written wins
type Strategy []Matcher

// NewStrategy builds a strategy that writes every selector with setter
func NewStrategy(selectors []string, setter Setter) Strategy {
	s := make(Strategy, len(selectors))
	for i, sel := range selectors {
		s[i] = Matcher{Selector: sel, Setter: setter}
	}
	return s
}

// SetValueOrText assigns the value of form controls and replaces the text
// of rich-text editors
func SetValueOrText(ctx context.Context, el Element, value string) error {
	isControl, err := el.IsFormControl(ctx)
	if err != nil {
		return err
	}
	if isControl {
		return el.SetValue(ctx, value)
	}
	return el.SetText(ctx, value)
}

// SetParagraphs writes value as one <p> per line into rich-text editors
func SetParagraphs(ctx context.Context, el Element, value string) error {
	isControl, err := el.IsFormControl(ctx)
	if err != nil {
		return err
	}
	if isControl {
		return el.SetValue(ctx, value)
	}
	markup, err := ParagraphHTML(value)
	if err != nil {
		return err
	}
	return el.SetHTML(ctx, markup)
}

// Fill runs the strategy. It returns the selector that was written, or ""
// when no matcher applied. Only ErrNoReceiver (and context errors) abort the
// search; other per-element failures move on to the next matcher.
func (s Strategy) Fill(ctx context.Context, doc Document, value string, log logrus.FieldLogger) (string, error) {
	for _, m := range s {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		el, err := doc.Query(ctx, m.Selector)
		if err != nil {
			if errors.Is(err, ErrNoReceiver) {
				return "", err
			}
			log.WithError(err).WithField("selector", m.Selector).Debug("selector query failed")
			continue
		}
		if el == nil {
			continue
		}

		if err := write(ctx, el, m.Setter, value); err != nil {
			if errors.Is(err, ErrNoReceiver) {
				return "", err
			}
			log.WithError(err).WithField("selector", m.Selector).Debug("element write failed, trying next selector")
			continue
		}

		return m.Selector, nil
	}
	return "", nil
}

func write(ctx context.Context, el Element, setter Setter, value string) error {
	// focus and click only prepare the editor; a failure there is not fatal
	if err := el.Focus(ctx); errors.Is(err, ErrNoReceiver) {
		return err
	}
	if err := el.Click(ctx); errors.Is(err, ErrNoReceiver) {
		return err
	}

	if err := setter(ctx, el, value); err != nil {
		return fmt.Errorf("set content: %w", err)
	}

	if err := el.Dispatch(ctx, Events...); err != nil {
		return fmt.Errorf("dispatch events: %w", err)
	}
	return nil
}
