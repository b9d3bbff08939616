// Package browser drives a Chrome instance through the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ppiankov/postcompass/internal/config"
	"github.com/sirupsen/logrus"
)

// ErrNotStarted is returned when the manager has no browser connection
var ErrNotStarted = errors.New("browser not started")

// Manager owns the Chrome connection and the active tab
type Manager struct {
	cfg config.BrowserConfig
	log logrus.FieldLogger

	mu         sync.Mutex
	browser    *rod.Browser
	page       *rod.Page
	controlURL string
	launched   *launcher.Launcher

	resolve func(string) (string, error)
	dial    func(controlURL string) *rod.Browser
}

// NewManager creates a manager; call Start before use
func NewManager(cfg config.BrowserConfig, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		cfg:     cfg,
		log:     log,
		resolve: launcher.ResolveURL,
		dial: func(controlURL string) *rod.Browser {
			return rod.New().ControlURL(controlURL)
		},
	}
}

// Start connects to DebuggerURL when set, otherwise launches Chrome. The
// connection outlives ctx; only its values are kept. Calling Start on a live
// connection is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.log.Warn("stale browser connection, reconnecting")
		m.teardown()
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(m.cfg.Headless)
		if m.cfg.Bin != "" {
			l = l.Bin(m.cfg.Bin)
		}
		if m.cfg.UserDataDir != "" {
			l = l.UserDataDir(m.cfg.UserDataDir)
		}
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
		m.launched = l
	} else {
		url, err := m.resolve(controlURL)
		if err != nil {
			return fmt.Errorf("resolve debugger url: %w", err)
		}
		controlURL = url
	}

	browser := m.dial(controlURL).Context(context.WithoutCancel(ctx))
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.controlURL = controlURL
	m.log.WithField("control_url", controlURL).Debug("browser connected")
	return nil
}

// ActiveTab returns the tracked tab, adopting the first open page or opening
// a blank one when none is tracked
func (m *Manager) ActiveTab(ctx context.Context) (*Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil, ErrNotStarted
	}
	if m.page != nil {
		return NewTab(m.page, m.log), nil
	}

	pages, err := m.browser.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	page := pages.First()
	if page == nil {
		page, err = m.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
	}
	// detach from ctx so the tracked page survives the request
	page = page.Context(m.browser.GetContext())
	if _, err := page.Context(ctx).Activate(); err != nil {
		m.log.WithError(err).Debug("activate page failed")
	}

	m.page = page
	return NewTab(page, m.log), nil
}

// Close disconnects and, if the manager launched Chrome, stops it
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.browser != nil && m.launched != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.teardown()
	return err
}

// teardown drops the connection and stops a Chrome this manager launched.
// Callers hold m.mu.
func (m *Manager) teardown() {
	if m.launched != nil {
		if m.browser != nil {
			_ = m.browser.Close()
		}
		m.launched.Kill()
		m.launched.Cleanup()
		m.launched = nil
	}
	m.browser, m.page = nil, nil
	m.controlURL = ""
}

// ControlURL returns the DevTools websocket URL in use
func (m *Manager) ControlURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controlURL
}
