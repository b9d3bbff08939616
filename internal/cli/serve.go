package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/postcompass/internal/history"
	"github.com/ppiankov/postcompass/internal/messaging"
	"github.com/ppiankov/postcompass/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr        string
	serveDebuggerURL string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the message API for a browser UI",
	Long: `Serve starts a local HTTP server that accepts typed messages:

  POST /api/messages   {"type": "generateDrafts", "text": "..."}
  GET  /health

Supported types: generateDrafts, suggestCommunities, researchTopic, navigate,
fillTwitter, fillLinkedIn, fillReddit, closeSidebar, listModels, history,
clearHistory, loadHistory, undo, shareIntent.

generateDrafts with a "platform" regenerates only that platform; "undo"
brings back its previous version.

Chrome is started on the first message that needs it.

Example:
  postcompass serve
  postcompass serve --addr 127.0.0.1:9000 --debugger-url http://127.0.0.1:9222`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDebuggerURL, "debugger-url", "", "connect to a running Chrome instead of launching one")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		a.cfg.Server.Addr = serveAddr
	}
	if serveDebuggerURL != "" {
		a.cfg.Browser.DebuggerURL = serveDebuggerURL
	}

	manager := a.browserManager()
	defer func() { _ = manager.Close() }()

	prefs := a.preferences()
	model := prefs.Model()
	if model == "" {
		model = a.cfg.LLM.Model
	}

	router := messaging.NewRouter(messaging.Deps{
		Generator:   a.generator(),
		Suggester:   a.suggester(),
		Researcher:  a.researcher(),
		Models:      a.modelCatalog(),
		Filler:      a.orchestrator(),
		Tab:         tabSource(manager),
		History:     a.history(),
		Preferences: prefs,
		Session:     history.NewSession(model),
	}, logrus.StandardLogger())

	fmt.Fprintf(os.Stderr, "✓ Listening on http://%s\n", a.cfg.Server.Addr)
	return server.New(router, logrus.StandardLogger()).ListenAndServe(cmd.Context(), a.cfg.Server.Addr)
}
