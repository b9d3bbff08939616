package composer

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/sirupsen/logrus"
)

// Defaults for the LinkedIn modal wait
const (
	DefaultModalWait    = 3 * time.Second
	DefaultPollInterval = 200 * time.Millisecond
)

// User-facing outcome messages
const (
	MsgFilled           = "Content filled successfully! Please review before posting."
	MsgTwitterNotFound  = "Could not find the compose box. Please open the tweet composer first."
	MsgLinkedInNotFound = `Could not find the post composer. Please try clicking "Start a post" first.`
	MsgRedditNotFound   = "Could not find Reddit post form. Please make sure you are on the submit page."
	MsgNothingToFill    = "No draft content to fill."
	MsgFillError        = "An error occurred while filling content."
	msgRedditFilledFmt  = "Reddit %s filled successfully! Please review before posting."
)

const (
	fieldText  = "text"
	fieldTitle = "title"
	fieldBody  = "body"
)

// Outcome reports what a fill attempt wrote
type Outcome struct {
	Platform draft.Platform `json:"platform"`
	Success  bool           `json:"success"`
	Message  string         `json:"message"`

	// Filled maps each written field to the selector that matched it
	Filled map[string]string `json:"filled,omitempty"`

	// Error carries the diagnostic when the attempt failed unexpectedly
	Error string `json:"error,omitempty"`
}

// Filler writes payloads into a platform composer
type Filler struct {
	ModalWait    time.Duration
	PollInterval time.Duration

	log   logrus.FieldLogger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFiller creates a filler with the default modal wait
func NewFiller() *Filler {
	return &Filler{
		ModalWait:    DefaultModalWait,
		PollInterval: DefaultPollInterval,
		log:          logrus.StandardLogger(),
		sleep:        sleepCtx,
	}
}

// WithLogger sets the logger
func (f *Filler) WithLogger(log logrus.FieldLogger) *Filler {
	f.log = log
	return f
}

// Fill locates the composer for platform in doc and writes payload into it.
// A missing composer is reported through the Outcome, not as an error. The
// error is non-nil only for ErrNoReceiver or a cancelled context.
func (f *Filler) Fill(ctx context.Context, doc Document, platform draft.Platform, payload draft.Payload) (Outcome, error) {
	log := f.log.WithField("platform", platform)

	switch platform {
	case draft.PlatformTwitter:
		return f.fillTwitter(ctx, doc, payload, log)
	case draft.PlatformLinkedIn:
		return f.fillLinkedIn(ctx, doc, payload, log)
	case draft.PlatformReddit:
		return f.fillReddit(ctx, doc, payload, log)
	default:
		return Outcome{Platform: platform, Message: MsgFillError}, fmt.Errorf("%w: %q", draft.ErrUnknownPlatform, platform)
	}
}

func (f *Filler) fillTwitter(ctx context.Context, doc Document, payload draft.Payload, log logrus.FieldLogger) (Outcome, error) {
	out := Outcome{Platform: draft.PlatformTwitter}
	if payload.Text == "" {
		out.Message = MsgNothingToFill
		return out, nil
	}

	sel, err := NewStrategy(TwitterTextSelectors, SetValueOrText).Fill(ctx, doc, payload.Text, log)
	if err != nil {
		return failed(out), err
	}
	if sel == "" {
		out.Message = MsgTwitterNotFound
		return out, nil
	}

	log.WithField("selector", sel).Debug("composer filled")
	return succeeded(out, map[string]string{fieldText: sel}, MsgFilled), nil
}

func (f *Filler) fillLinkedIn(ctx context.Context, doc Document, payload draft.Payload, log logrus.FieldLogger) (Outcome, error) {
	out := Outcome{Platform: draft.PlatformLinkedIn}
	if payload.Text == "" {
		out.Message = MsgNothingToFill
		return out, nil
	}

	strategy := NewStrategy(LinkedInTextSelectors, SetParagraphs)

	trigger, err := doc.Query(ctx, LinkedInTriggerSelector)
	if err != nil {
		return failed(out), err
	}

	var sel string
	if trigger == nil {
		sel, err = strategy.Fill(ctx, doc, payload.Text, log)
	} else {
		if err := trigger.Click(ctx); err != nil {
			log.WithError(err).Debug("start-a-post trigger click failed")
		}
		sel, err = f.poll(ctx, func() (string, error) {
			return strategy.Fill(ctx, doc, payload.Text, log)
		})
	}
	if err != nil {
		return failed(out), err
	}
	if sel == "" {
		out.Message = MsgLinkedInNotFound
		return out, nil
	}

	log.WithField("selector", sel).Debug("composer filled")
	return succeeded(out, map[string]string{fieldText: sel}, MsgFilled), nil
}

func (f *Filler) fillReddit(ctx context.Context, doc Document, payload draft.Payload, log logrus.FieldLogger) (Outcome, error) {
	out := Outcome{Platform: draft.PlatformReddit}
	if payload.Title == "" && payload.Body == "" {
		out.Message = MsgNothingToFill
		return out, nil
	}

	filled := map[string]string{}
	fields := []struct {
		name      string
		value     string
		selectors []string
	}{
		{fieldTitle, payload.Title, RedditTitleSelectors},
		{fieldBody, payload.Body, RedditBodySelectors},
	}

	for _, field := range fields {
		if field.value == "" {
			continue
		}
		sel, err := NewStrategy(field.selectors, SetValueOrText).Fill(ctx, doc, field.value, log.WithField("field", field.name))
		if err != nil {
			return failed(out), err
		}
		if sel != "" {
			filled[field.name] = sel
		}
	}

	_, title := filled[fieldTitle]
	_, body := filled[fieldBody]
	switch {
	case title && body:
		return succeeded(out, filled, fmt.Sprintf(msgRedditFilledFmt, "title and body")), nil
	case title:
		return succeeded(out, filled, fmt.Sprintf(msgRedditFilledFmt, fieldTitle)), nil
	case body:
		return succeeded(out, filled, fmt.Sprintf(msgRedditFilledFmt, fieldBody)), nil
	default:
		out.Message = MsgRedditNotFound
		return out, nil
	}
}

// poll retries attempt until it writes a field or ModalWait elapses
func (f *Filler) poll(ctx context.Context, attempt func() (string, error)) (string, error) {
	interval := f.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(f.ModalWait)

	for {
		sel, err := attempt()
		if err != nil || sel != "" {
			return sel, err
		}
		if !time.Now().Before(deadline) {
			return "", nil
		}
		if err := f.sleep(ctx, interval); err != nil {
			return "", err
		}
	}
}

func succeeded(out Outcome, filled map[string]string, msg string) Outcome {
	out.Success = true
	out.Filled = filled
	out.Message = msg
	return out
}

func failed(out Outcome) Outcome {
	out.Message = MsgFillError
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
