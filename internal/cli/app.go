package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/postcompass/internal/browser"
	"github.com/ppiankov/postcompass/internal/cache"
	"github.com/ppiankov/postcompass/internal/composer"
	"github.com/ppiankov/postcompass/internal/config"
	"github.com/ppiankov/postcompass/internal/fill"
	"github.com/ppiankov/postcompass/internal/history"
	"github.com/ppiankov/postcompass/internal/llm"
	"github.com/ppiankov/postcompass/internal/pipeline"
	"github.com/ppiankov/postcompass/internal/suggest"
	"github.com/ppiankov/postcompass/internal/util"
	"github.com/ppiankov/postcompass/internal/worker"
	"github.com/sirupsen/logrus"
)

// app wires the components every command shares
type app struct {
	cfg     *config.Config
	llm     llm.Config
	limiter *worker.Limiter
	store   cache.Cache
	models  cache.Cache
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		llm:     llm.ConfigFromSettings(cfg.LLM, cfg.HTTP),
		limiter: worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		store:   cache.NewDiskCache(config.DataDir(), cache.NoExpiration),
	}
	if cfg.Cache.Enabled {
		a.models = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	} else {
		a.models = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
	}
	return a, nil
}

func (a *app) generator() *pipeline.Generator {
	return pipeline.NewGenerator(a.llm, a.limiter).WithLogger(componentLog("generator"))
}

func (a *app) suggester() *suggest.Suggester {
	return suggest.NewSuggester(a.llm, a.limiter)
}

func (a *app) researcher() *suggest.Researcher {
	r := suggest.NewResearcher(a.cfg.HTTP.UserAgent, a.cfg.HTTP.Timeout, a.limiter)
	if a.cfg.Research.RespectRobots {
		r = r.WithRobots(util.NewRobotsChecker(a.cfg.HTTP.UserAgent, a.cfg.HTTP.Timeout))
	}
	return r
}

func (a *app) modelCatalog() *llm.ModelCatalog {
	return llm.NewModelCatalog(a.cfg.LLM.BaseURL, a.models, a.cfg.Cache.TTL)
}

func (a *app) history() *history.History {
	return history.New(a.store)
}

func (a *app) preferences() *history.Preferences {
	return history.NewPreferences(a.store)
}

func (a *app) browserManager() *browser.Manager {
	return browser.NewManager(a.cfg.Browser, logrus.StandardLogger())
}

func (a *app) orchestrator() *fill.Orchestrator {
	filler := composer.NewFiller().WithLogger(componentLog("composer"))
	if a.cfg.Browser.ModalWait > 0 {
		filler.ModalWait = a.cfg.Browser.ModalWait
	}
	o := fill.NewOrchestrator(filler).WithLogger(componentLog("fill"))
	if a.cfg.Browser.LoadTimeout > 0 {
		o.LoadTimeout = a.cfg.Browser.LoadTimeout
	}
	if a.cfg.Browser.SettleDelay > 0 {
		o.SettleDelay = a.cfg.Browser.SettleDelay
	}
	return o
}

// providerStatus reports whether the configured chat provider answers
func (a *app) providerStatus(ctx context.Context) (string, bool) {
	provider, err := llm.NewProvider(a.llm)
	if err != nil {
		logrus.WithError(err).Debug("provider not configured")
		return a.llm.Provider, false
	}
	return provider.Name(), provider.IsAvailable(ctx)
}

func componentLog(name string) logrus.FieldLogger {
	return logrus.StandardLogger().WithField("component", name)
}

// tabSource starts the browser on first use and hands out its active tab
func tabSource(m *browser.Manager) func(ctx context.Context) (fill.Tab, error) {
	return func(ctx context.Context) (fill.Tab, error) {
		if err := m.Start(ctx); err != nil {
			return nil, err
		}
		return m.ActiveTab(ctx)
	}
}

// readInput returns args joined, or stdin when args is empty or "-"
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printBanner(title string) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
}
