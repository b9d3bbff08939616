package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	modelsJSON  bool
	modelsUse   string
	modelsCheck bool
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List text models offered by the generation endpoint",
	Long: `Models lists the text-capable models the endpoint advertises. The
stored preference is marked with "*". Use --use to change it and --check to
test whether the configured chat provider is reachable.

Example:
  postcompass models
  postcompass models --use openai
  postcompass models --check`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print models as JSON")
	modelsCmd.Flags().StringVar(&modelsUse, "use", "", "store this model as the default")
	modelsCmd.Flags().BoolVar(&modelsCheck, "check", false, "check that the chat provider is reachable")
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	models := a.modelCatalog().List(ctx)
	prefs := a.preferences()

	if modelsUse != "" {
		if err := prefs.SetModel(modelsUse); err != nil {
			return err
		}
	}
	selected, err := prefs.ResolveModel(models)
	if err != nil {
		return err
	}

	var (
		provider  string
		available bool
	)
	if modelsCheck {
		provider, available = a.providerStatus(ctx)
	}

	if modelsJSON {
		out := map[string]any{"models": models, "selected": selected}
		if modelsCheck {
			out["provider"] = provider
			out["available"] = available
		}
		return writeJSON(cmd, out)
	}

	if modelsCheck {
		if available {
			fmt.Fprintf(os.Stderr, "✓ %s provider reachable at %s\n", provider, a.llm.ChatBaseURL())
		} else {
			fmt.Fprintf(os.Stderr, "✗ %s provider not reachable at %s\n", provider, a.llm.ChatBaseURL())
		}
	}

	w := cmd.OutOrStdout()
	for _, m := range models {
		marker := " "
		if m == selected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, m)
	}
	return nil
}
