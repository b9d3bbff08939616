// Package composertest provides an in-memory composer.Document for tests.
package composertest

import (
	"context"
	"sync"

	"github.com/ppiankov/postcompass/internal/composer"
)

// Document maps selectors to elements
type Document struct {
	mu       sync.Mutex
	elements map[string]*Element
	queries  []string

	// NoReceiver makes every call fail with composer.ErrNoReceiver
	NoReceiver bool
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{elements: map[string]*Element{}}
}

// Add registers el under selector and returns it
func (d *Document) Add(selector string, el *Element) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	el.doc = d
	d.elements[selector] = el
	return el
}

// Queries returns every selector queried so far, in order
func (d *Document) Queries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.queries...)
}

// SetNoReceiver toggles the missing-receiver state
func (d *Document) SetNoReceiver(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.NoReceiver = v
}

func (d *Document) Query(_ context.Context, selector string) (composer.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, selector)
	if d.NoReceiver {
		return nil, composer.ErrNoReceiver
	}
	el, ok := d.elements[selector]
	if !ok {
		return nil, nil
	}
	return el, nil
}

func (d *Document) receiverErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.NoReceiver {
		return composer.ErrNoReceiver
	}
	return nil
}

// Element records what was written into it
type Element struct {
	FormControl bool

	// SetErr, when set, is returned by every write
	SetErr error

	// OnClick runs after the element is clicked
	OnClick func()

	doc     *Document
	mu      sync.Mutex
	value   string
	text    string
	html    string
	events  []string
	focused bool
	clicks  int
}

// Value returns whatever was last written, whichever setter wrote it
func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.value != "":
		return e.value
	case e.html != "":
		return e.html
	default:
		return e.text
	}
}

// HTML returns the markup written with SetHTML
func (e *Element) HTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.html
}

// Events returns the dispatched event names
func (e *Element) Events() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

// Clicks returns how many times the element was clicked
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Focused reports whether Focus was called
func (e *Element) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

func (e *Element) check() error {
	if e.doc != nil {
		return e.doc.receiverErr()
	}
	return nil
}

func (e *Element) IsFormControl(context.Context) (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	return e.FormControl, nil
}

func (e *Element) Focus(context.Context) error {
	if err := e.check(); err != nil {
		return err
	}
	e.mu.Lock()
	e.focused = true
	e.mu.Unlock()
	return nil
}

func (e *Element) Click(context.Context) error {
	if err := e.check(); err != nil {
		return err
	}
	e.mu.Lock()
	e.clicks++
	hook := e.OnClick
	e.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (e *Element) SetValue(_ context.Context, value string) error {
	return e.write(func() { e.value = value })
}

func (e *Element) SetText(_ context.Context, text string) error {
	return e.write(func() { e.text = text })
}

func (e *Element) SetHTML(_ context.Context, html string) error {
	return e.write(func() { e.html = html })
}

func (e *Element) Dispatch(_ context.Context, events ...string) error {
	return e.write(func() { e.events = append(e.events, events...) })
}

func (e *Element) write(apply func()) error {
	if err := e.check(); err != nil {
		return err
	}
	if e.SetErr != nil {
		return e.SetErr
	}
	e.mu.Lock()
	apply()
	e.mu.Unlock()
	return nil
}

// Notifier records notifications
type Notifier struct {
	mu       sync.Mutex
	Messages []string
	Results  []bool
}

func (n *Notifier) Notify(_ context.Context, message string, success bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, message)
	n.Results = append(n.Results, success)
	return nil
}
