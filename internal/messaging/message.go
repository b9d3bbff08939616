// Package messaging routes typed request messages from the UI surface to the
// drafting, suggestion, research and fill operations.
package messaging

// Message types
const (
	TypeGenerateDrafts     = "generateDrafts"
	TypeSuggestCommunities = "suggestCommunities"
	TypeResearchTopic      = "researchTopic"
	TypeNavigate           = "navigate"
	TypeFillTwitter        = "fillTwitter"
	TypeFillLinkedIn       = "fillLinkedIn"
	TypeFillReddit         = "fillReddit"
	TypeCloseSidebar       = "closeSidebar"
	TypeListModels         = "listModels"
	TypeHistory            = "history"
	TypeClearHistory       = "clearHistory"
	TypeLoadHistory        = "loadHistory"
	TypeUndo               = "undo"
	TypeShareIntent        = "shareIntent"
)

// Message is one request. Which fields matter depends on Type.
type Message struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body,omitempty"`
	URL      string `json:"url,omitempty"`
	Model    string `json:"model,omitempty"`
	Tone     string `json:"tone,omitempty"`
	Platform string `json:"platform,omitempty"`
	ID       string `json:"id,omitempty"`

	// research bounds
	Days         int `json:"days,omitempty"`
	MaxPerSource int `json:"maxPerSource,omitempty"`
}

// Response is the reply to exactly one Message
type Response struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func ok(data any) Response {
	return Response{OK: true, Data: data}
}

func fail(err error) Response {
	return Response{OK: false, Error: err.Error()}
}
