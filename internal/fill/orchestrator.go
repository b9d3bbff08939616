// Package fill brings a tab to a platform's composer and fills it.
package fill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/postcompass/internal/composer"
	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/sirupsen/logrus"
)

// Default waits around navigation
const (
	DefaultLoadTimeout = 15 * time.Second
	DefaultSettleDelay = 1500 * time.Millisecond
)

// Tab is a browser tab the orchestrator can drive
type Tab interface {
	URL(ctx context.Context) (string, error)
	Navigate(ctx context.Context, url string) error
	// WaitLoad blocks until the current navigation has finished loading
	WaitLoad(ctx context.Context) error
	Document() composer.Document
	// InjectReceiver installs the in-page receiver the Document talks to
	InjectReceiver(ctx context.Context) error
	composer.Notifier
}

// Orchestrator runs a fill request end to end
type Orchestrator struct {
	LoadTimeout time.Duration
	SettleDelay time.Duration

	filler *composer.Filler
	log    logrus.FieldLogger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator using filler
func NewOrchestrator(filler *composer.Filler) *Orchestrator {
	if filler == nil {
		filler = composer.NewFiller()
	}
	return &Orchestrator{
		LoadTimeout: DefaultLoadTimeout,
		SettleDelay: DefaultSettleDelay,
		filler:      filler,
		log:         logrus.StandardLogger(),
		sleep:       sleepCtx,
	}
}

// WithLogger sets the logger
func (o *Orchestrator) WithLogger(log logrus.FieldLogger) *Orchestrator {
	o.log = log
	return o
}

// RequestFill navigates tab to the platform composer when needed and fills
// it with payload. The outcome is also surfaced in the tab as a toast.
func (o *Orchestrator) RequestFill(ctx context.Context, platform draft.Platform, payload draft.Payload, tab Tab) composer.Outcome {
	log := o.log.WithField("platform", platform)

	out, err := o.fill(ctx, platform, payload, tab, log)
	if err != nil {
		log.WithError(err).Warn("fill failed")
		out.Platform = platform
		out.Success = false
		out.Message = composer.MsgFillError
		out.Error = err.Error()
	}

	if nerr := tab.Notify(ctx, out.Message, out.Success); nerr != nil {
		log.WithError(nerr).Debug("notify failed")
	}
	return out
}

func (o *Orchestrator) fill(ctx context.Context, platform draft.Platform, payload draft.Payload, tab Tab, log logrus.FieldLogger) (composer.Outcome, error) {
	target, ok := Targets[platform]
	if !ok {
		return composer.Outcome{}, fmt.Errorf("%w: %q", draft.ErrUnknownPlatform, platform)
	}

	if err := o.ensureOnTarget(ctx, target, tab, log); err != nil {
		return composer.Outcome{}, err
	}

	out, err := o.filler.Fill(ctx, tab.Document(), platform, payload)
	if !errors.Is(err, composer.ErrNoReceiver) {
		return out, err
	}

	log.Debug("receiver missing, injecting and retrying once")
	if err := tab.InjectReceiver(ctx); err != nil {
		return composer.Outcome{}, fmt.Errorf("inject receiver: %w", err)
	}
	out, err = o.filler.Fill(ctx, tab.Document(), platform, payload)
	if err != nil {
		return out, fmt.Errorf("fill after inject: %w", err)
	}
	return out, nil
}

// ensureOnTarget navigates to the composer when the tab is elsewhere. A load
// that exceeds LoadTimeout is not an error; the fill proceeds anyway.
func (o *Orchestrator) ensureOnTarget(ctx context.Context, target Target, tab Tab, log logrus.FieldLogger) error {
	current, err := tab.URL(ctx)
	if err != nil {
		log.WithError(err).Debug("could not read tab url")
	}
	if err == nil && target.Matches(current) {
		return nil
	}

	log.WithField("url", target.URL).Info("navigating to composer")
	if err := tab.Navigate(ctx, target.URL); err != nil {
		return fmt.Errorf("navigate to %s: %w", target.URL, err)
	}

	loadCtx, cancel := context.WithTimeout(ctx, o.LoadTimeout)
	err = tab.WaitLoad(loadCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Debug("page load not confirmed, continuing")
	}

	return o.sleep(ctx, o.SettleDelay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
