// Package composer locates and fills the post composer of each network.
//
// It works against a Document abstraction so the same selector strategies
// run in a driven browser and against in-memory fakes.
package composer

import (
	"context"
	"errors"
)

// ErrNoReceiver means the page has no composer receiver installed yet. The
// caller may inject it and retry.
var ErrNoReceiver = errors.New("composer receiver not installed in page")

// Events dispatched after a value is written so the page's own framework
// observes the change
var Events = []string{"input", "change", "keydown", "keyup"}

// Document is a queryable page
type Document interface {
	// Query returns the first element matching the CSS selector, or nil, nil
	// when nothing matches
	Query(ctx context.Context, selector string) (Element, error)
}

// Element is one located node
type Element interface {
	// IsFormControl reports whether the node takes a value (input, textarea)
	IsFormControl(ctx context.Context) (bool, error)
	Focus(ctx context.Context) error
	Click(ctx context.Context) error
	SetValue(ctx context.Context, value string) error
	SetText(ctx context.Context, text string) error
	SetHTML(ctx context.Context, html string) error
	Dispatch(ctx context.Context, events ...string) error
}

// Notifier surfaces a transient message to the user
type Notifier interface {
	Notify(ctx context.Context, message string, success bool) error
}
