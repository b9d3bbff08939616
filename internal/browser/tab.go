package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/ppiankov/postcompass/internal/composer"
	"github.com/sirupsen/logrus"
)

// Tab drives one page. It satisfies fill.Tab.
type Tab struct {
	page *rod.Page
	log  logrus.FieldLogger
}

// NewTab wraps page
func NewTab(page *rod.Page, log logrus.FieldLogger) *Tab {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tab{page: page, log: log}
}

// URL returns the page's current address
func (t *Tab) URL(ctx context.Context) (string, error) {
	info, err := t.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (t *Tab) Navigate(ctx context.Context, url string) error {
	return t.page.Context(ctx).Navigate(url)
}

func (t *Tab) WaitLoad(ctx context.Context) error {
	return t.page.Context(ctx).WaitLoad()
}

func (t *Tab) Document() composer.Document {
	return &document{tab: t}
}

// InjectReceiver installs the in-page receiver. It is idempotent.
func (t *Tab) InjectReceiver(ctx context.Context) error {
	_, err := t.page.Context(ctx).Evaluate(&rod.EvalOptions{JS: receiverJS, ByValue: true})
	if err != nil {
		return fmt.Errorf("inject receiver: %w", err)
	}
	return nil
}

// Notify shows message as a toast in the page
func (t *Tab) Notify(ctx context.Context, message string, success bool) error {
	_, err := t.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      toastJS,
		JSArgs:  []interface{}{message, success},
		ByValue: true,
	})
	return err
}

// Dismiss removes toasts left in the page
func (t *Tab) Dismiss(ctx context.Context) error {
	_, err := t.page.Context(ctx).Evaluate(&rod.EvalOptions{JS: dismissJS, ByValue: true})
	return err
}

// callResult is the envelope callJS returns
type callResult struct {
	Missing bool            `json:"missing"`
	Value   json.RawMessage `json:"value"`
	Error   string          `json:"error"`
}

// call invokes a receiver method and decodes its return value into out
func (t *Tab) call(ctx context.Context, out any, method string, args ...any) error {
	if args == nil {
		args = []any{}
	}
	res, err := t.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      callJS,
		JSArgs:  []interface{}{method, args},
		ByValue: true,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("%s: encode result: %w", method, err)
	}
	return decodeCall(method, raw, out)
}

func decodeCall(method string, raw []byte, out any) error {
	var r callResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	if r.Missing {
		return composer.ErrNoReceiver
	}
	if r.Error != "" {
		return fmt.Errorf("%s: %w", method, errors.New(r.Error))
	}
	if out == nil || len(r.Value) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Value, out); err != nil {
		return fmt.Errorf("%s: decode value: %w", method, err)
	}
	return nil
}

type document struct {
	tab *Tab
}

func (d *document) Query(ctx context.Context, selector string) (composer.Element, error) {
	var id int
	if err := d.tab.call(ctx, &id, "query", selector); err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return &element{tab: d.tab, id: id}, nil
}

type element struct {
	tab *Tab
	id  int
}

func (e *element) IsFormControl(ctx context.Context) (bool, error) {
	var ok bool
	err := e.tab.call(ctx, &ok, "isFormControl", e.id)
	return ok, err
}

func (e *element) Focus(ctx context.Context) error {
	return e.tab.call(ctx, nil, "focus", e.id)
}

func (e *element) Click(ctx context.Context) error {
	return e.tab.call(ctx, nil, "click", e.id)
}

func (e *element) SetValue(ctx context.Context, value string) error {
	return e.tab.call(ctx, nil, "setValue", e.id, value)
}

func (e *element) SetText(ctx context.Context, text string) error {
	return e.tab.call(ctx, nil, "setText", e.id, text)
}

func (e *element) SetHTML(ctx context.Context, html string) error {
	return e.tab.call(ctx, nil, "setHTML", e.id, html)
}

func (e *element) Dispatch(ctx context.Context, events ...string) error {
	return e.tab.call(ctx, nil, "dispatch", e.id, events)
}
