package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/ppiankov/postcompass/internal/composer"
	"github.com/ppiankov/postcompass/internal/draft"
	"github.com/ppiankov/postcompass/internal/fill"
	"github.com/ppiankov/postcompass/internal/history"
	"github.com/ppiankov/postcompass/internal/pipeline"
	"github.com/ppiankov/postcompass/internal/suggest"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned when a message needs a dependency the router
// was built without
var ErrUnavailable = errors.New("not available")

// ErrNoDrafts is returned when a message needs session drafts and none have
// been generated
var ErrNoDrafts = errors.New("no drafts in session")

// ErrNothingToUndo is returned when a platform has no earlier version
var ErrNothingToUndo = errors.New("nothing to undo")

// DraftGenerator produces drafts for a raw thought
type DraftGenerator interface {
	GenerateDrafts(ctx context.Context, rawThought string, opts pipeline.Options) (draft.DraftSet, error)
}

// CommunitySuggester proposes hashtags and subreddits
type CommunitySuggester interface {
	Suggest(ctx context.Context, text string, opts suggest.Options) suggest.Suggestions
}

// TopicResearcher finds recent discussions
type TopicResearcher interface {
	Research(ctx context.Context, topic string, opts suggest.ResearchOptions) ([]suggest.Item, error)
}

// ModelLister lists selectable models
type ModelLister interface {
	List(ctx context.Context) []string
}

// FillRequester fills a composer in a tab
type FillRequester interface {
	RequestFill(ctx context.Context, platform draft.Platform, payload draft.Payload, tab fill.Tab) composer.Outcome
}

// TabFunc returns the tab fill and navigate messages act on
type TabFunc func(ctx context.Context) (fill.Tab, error)

// Dismisser is implemented by tabs that can clear their overlays
type Dismisser interface {
	Dismiss(ctx context.Context) error
}

// Deps are the router's collaborators. Nil members disable the messages that
// need them.
type Deps struct {
	Generator   DraftGenerator
	Suggester   CommunitySuggester
	Researcher  TopicResearcher
	Models      ModelLister
	Filler      FillRequester
	Tab         TabFunc
	History     *history.History
	Preferences *history.Preferences
	Session     *history.Session

	// OnCloseSidebar runs when the UI asks to close
	OnCloseSidebar func()
}

// GenerateResult is the data of generateDrafts, undo and loadHistory
// responses. Undo counts the earlier versions each platform can go back to.
type GenerateResult struct {
	ID     string                 `json:"id,omitempty"`
	Model  string                 `json:"model"`
	Drafts draft.DraftSet         `json:"drafts"`
	Undo   map[draft.Platform]int `json:"undo,omitempty"`
}

// ShareResult is the data of a shareIntent response
type ShareResult struct {
	Platform draft.Platform `json:"platform"`
	URL      string         `json:"url"`
}

// ModelsResult is the data of a listModels response
type ModelsResult struct {
	Models   []string `json:"models"`
	Selected string   `json:"selected"`
}

type handlerFunc func(ctx context.Context, msg Message) (any, error)

// Router dispatches messages by type
type Router struct {
	deps     Deps
	log      logrus.FieldLogger
	handlers map[string]handlerFunc
}

// NewRouter creates a router over deps
func NewRouter(deps Deps, log logrus.FieldLogger) *Router {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Router{deps: deps, log: log}
	r.handlers = map[string]handlerFunc{
		TypeGenerateDrafts:     r.generateDrafts,
		TypeSuggestCommunities: r.suggestCommunities,
		TypeResearchTopic:      r.researchTopic,
		TypeNavigate:           r.navigate,
		TypeFillTwitter:        r.fillFor(draft.PlatformTwitter),
		TypeFillLinkedIn:       r.fillFor(draft.PlatformLinkedIn),
		TypeFillReddit:         r.fillFor(draft.PlatformReddit),
		TypeCloseSidebar:       r.closeSidebar,
		TypeListModels:         r.listModels,
		TypeHistory:            r.listHistory,
		TypeClearHistory:       r.clearHistory,
		TypeLoadHistory:        r.loadHistory,
		TypeUndo:               r.undo,
		TypeShareIntent:        r.shareIntent,
	}
	return r
}

// Handle answers msg. It always returns exactly one Response; handler panics
// become failed responses.
func (r *Router) Handle(ctx context.Context, msg Message) (resp Response) {
	log := r.log.WithField("type", msg.Type)

	h, found := r.handlers[msg.Type]
	if !found {
		return fail(fmt.Errorf("unknown message type: %s", msg.Type))
	}

	defer func() {
		if p := recover(); p != nil {
			log.WithField("stack", string(debug.Stack())).Errorf("handler panic: %v", p)
			resp = fail(fmt.Errorf("internal error handling %s: %v", msg.Type, p))
		}
	}()

	data, err := h(ctx, msg)
	if err != nil {
		log.WithError(err).Debug("message failed")
		resp = fail(err)
		resp.Data = data
		return resp
	}
	return ok(data)
}

// generateDrafts rewrites msg.Text for every platform. With msg.Platform set
// only that platform is regenerated, from msg.Text or the session's thought,
// and its previous drafts stay available to undo.
func (r *Router) generateDrafts(ctx context.Context, msg Message) (any, error) {
	if r.deps.Generator == nil {
		return nil, fmt.Errorf("draft generation %w", ErrUnavailable)
	}

	var (
		platform draft.Platform
		err      error
	)
	if msg.Platform != "" {
		if platform, err = draft.ParsePlatform(msg.Platform); err != nil {
			return nil, err
		}
	}

	model := msg.Model
	if model == "" && r.deps.Preferences != nil {
		model = r.deps.Preferences.Model()
	}
	if model == "" && r.deps.Session != nil {
		model = r.deps.Session.Model()
	}

	raw := strings.TrimSpace(msg.Text)
	if raw == "" && platform != "" && r.deps.Session != nil {
		raw = r.deps.Session.Raw()
	}

	set, err := r.deps.Generator.GenerateDrafts(ctx, raw, pipeline.Options{Model: model, Tone: msg.Tone})
	if err != nil {
		return nil, err
	}

	result := GenerateResult{Model: model, Drafts: set}
	entry := history.Entry{Model: model, Raw: raw, Drafts: set}

	if s := r.deps.Session; s != nil {
		if model != "" {
			s.SetModel(model)
		}
		if platform != "" && s.Raw() == raw && !s.Drafts().IsEmpty() {
			result.Drafts = s.Push(platform, set)
		} else {
			s.Start(raw, set)
		}
		result.Undo = r.undoDepths()
		entry = s.Entry()
	}
	if r.deps.Preferences != nil && msg.Model != "" {
		if err := r.deps.Preferences.SetModel(msg.Model); err != nil {
			r.log.WithError(err).Warn("could not store model preference")
		}
	}
	if r.deps.History != nil {
		saved, err := r.deps.History.Add(entry)
		if err != nil {
			r.log.WithError(err).Warn("could not save history")
		} else {
			result.ID = saved.ID
		}
	}
	return result, nil
}

// suggestCommunities works on msg.Text, falling back to the session's drafts
// and then its raw thought
func (r *Router) suggestCommunities(ctx context.Context, msg Message) (any, error) {
	if r.deps.Suggester == nil {
		return nil, fmt.Errorf("suggestions %w", ErrUnavailable)
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" && r.deps.Session != nil {
		text = r.deps.Session.Drafts().Combined()
		if text == "" {
			text = r.deps.Session.Raw()
		}
	}
	return r.deps.Suggester.Suggest(ctx, text, suggest.Options{Model: msg.Model}), nil
}

func (r *Router) researchTopic(ctx context.Context, msg Message) (any, error) {
	if r.deps.Researcher == nil {
		return nil, fmt.Errorf("research %w", ErrUnavailable)
	}
	topic := strings.TrimSpace(msg.Text)
	if topic == "" {
		return nil, errors.New("research topic is empty")
	}
	return r.deps.Researcher.Research(ctx, topic, suggest.ResearchOptions{Days: msg.Days, MaxPerSource: msg.MaxPerSource})
}

func (r *Router) navigate(ctx context.Context, msg Message) (any, error) {
	u, err := url.Parse(strings.TrimSpace(msg.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid url: %q", msg.URL)
	}
	tab, err := r.tab(ctx)
	if err != nil {
		return nil, err
	}
	if err := tab.Navigate(ctx, u.String()); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	return map[string]string{"url": u.String()}, nil
}

func (r *Router) fillFor(platform draft.Platform) handlerFunc {
	return func(ctx context.Context, msg Message) (any, error) {
		if r.deps.Filler == nil {
			return nil, fmt.Errorf("fill %w", ErrUnavailable)
		}

		payload, err := r.payload(platform, msg)
		if err != nil {
			return nil, err
		}

		tab, err := r.tab(ctx)
		if err != nil {
			return nil, err
		}

		out := r.deps.Filler.RequestFill(ctx, platform, payload, tab)
		if !out.Success {
			if out.Error != "" {
				return out, errors.New(out.Error)
			}
			return out, errors.New(out.Message)
		}
		return out, nil
	}
}

func (r *Router) closeSidebar(ctx context.Context, _ Message) (any, error) {
	if r.deps.Tab != nil {
		if tab, err := r.deps.Tab(ctx); err == nil {
			if d, ok := tab.(Dismisser); ok {
				if err := d.Dismiss(ctx); err != nil {
					r.log.WithError(err).Debug("dismiss overlays failed")
				}
			}
		}
	}
	if r.deps.OnCloseSidebar != nil {
		r.deps.OnCloseSidebar()
	}
	return nil, nil
}

func (r *Router) listModels(ctx context.Context, _ Message) (any, error) {
	if r.deps.Models == nil {
		return nil, fmt.Errorf("model discovery %w", ErrUnavailable)
	}
	models := r.deps.Models.List(ctx)
	result := ModelsResult{Models: models}
	if len(models) > 0 {
		result.Selected = models[0]
	}
	if r.deps.Preferences != nil {
		selected, err := r.deps.Preferences.ResolveModel(models)
		if err != nil {
			r.log.WithError(err).Warn("could not store model preference")
		}
		result.Selected = selected
	}
	return result, nil
}

func (r *Router) listHistory(context.Context, Message) (any, error) {
	if r.deps.History == nil {
		return []history.Entry{}, nil
	}
	return r.deps.History.List()
}

func (r *Router) clearHistory(context.Context, Message) (any, error) {
	if r.deps.History == nil {
		return nil, nil
	}
	return nil, r.deps.History.Clear()
}

// loadHistory restores a saved entry into the session
func (r *Router) loadHistory(_ context.Context, msg Message) (any, error) {
	if r.deps.History == nil || r.deps.Session == nil {
		return nil, fmt.Errorf("history %w", ErrUnavailable)
	}
	entry, err := r.deps.History.Get(strings.TrimSpace(msg.ID))
	if err != nil {
		return nil, err
	}
	r.deps.Session.Restore(entry)
	return GenerateResult{ID: entry.ID, Model: entry.Model, Drafts: entry.Drafts, Undo: r.undoDepths()}, nil
}

// undo restores msg.Platform's previous drafts in the session
func (r *Router) undo(_ context.Context, msg Message) (any, error) {
	if r.deps.Session == nil {
		return nil, fmt.Errorf("session %w", ErrUnavailable)
	}
	platform, err := draft.ParsePlatform(msg.Platform)
	if err != nil {
		return nil, err
	}
	drafts, undone := r.deps.Session.Undo(platform)
	if !undone {
		return nil, fmt.Errorf("%s: %w", platform, ErrNothingToUndo)
	}
	return GenerateResult{Model: r.deps.Session.Model(), Drafts: drafts, Undo: r.undoDepths()}, nil
}

// shareIntent returns the platform's prefilled share address for the message
// content or the session drafts
func (r *Router) shareIntent(_ context.Context, msg Message) (any, error) {
	platform, err := draft.ParsePlatform(msg.Platform)
	if err != nil {
		return nil, err
	}
	payload, err := r.payload(platform, msg)
	if err != nil {
		return nil, err
	}
	u, err := fill.ShareURL(platform, draft.FromPayload(platform, payload))
	if err != nil {
		return nil, err
	}
	return ShareResult{Platform: platform, URL: u}, nil
}

// payload takes platform content from msg, or from the session when msg
// carries none
func (r *Router) payload(platform draft.Platform, msg Message) (draft.Payload, error) {
	payload := draft.Payload{Text: msg.Text, Title: msg.Title, Body: msg.Body}
	if payload != (draft.Payload{}) || r.deps.Session == nil {
		return payload, nil
	}
	drafts := r.deps.Session.Drafts()
	if drafts.IsEmpty() {
		return draft.Payload{}, ErrNoDrafts
	}
	return drafts.PayloadFor(platform), nil
}

func (r *Router) undoDepths() map[draft.Platform]int {
	depths := make(map[draft.Platform]int)
	for _, p := range draft.Platforms() {
		if n := r.deps.Session.Depth(p); n > 0 {
			depths[p] = n
		}
	}
	return depths
}

func (r *Router) tab(ctx context.Context) (fill.Tab, error) {
	if r.deps.Tab == nil {
		return nil, fmt.Errorf("browser %w", ErrUnavailable)
	}
	tab, err := r.deps.Tab(ctx)
	if err != nil {
		return nil, fmt.Errorf("browser tab: %w", err)
	}
	return tab, nil
}
