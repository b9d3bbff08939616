package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/postcompass/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Post Compass configuration",
	Long: `Manage Post Compass configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (POSTCOMPASS_*, also read from .env)
3. Config file (~/.postcompass/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, environment and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.LLM.APIKey != "" {
			cfg.LLM.APIKey = "***"
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(w, "  Current Configuration")
		fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(w)
		fmt.Fprintln(w, string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.postcompass/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir := config.HomeDir()
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'postcompass config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		data, err := renderDefaultConfig()
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, data, 0600); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  postcompass config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n\n", configPath)
		return nil
	},
}

// renderDefaultConfig returns the commented default config file
func renderDefaultConfig() ([]byte, error) {
	yamlData, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("error marshaling config: %w", err)
	}

	header := `# Post Compass Configuration File
# See https://github.com/ppiankov/postcompass for full documentation
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (POSTCOMPASS_*, e.g. POSTCOMPASS_LLM_MODEL)
#   3. This config file
#   4. Built-in defaults

`
	footer := `
# API keys (recommended to use environment variables instead):
#   export POSTCOMPASS_API_KEY=...      # any OpenAI-compatible endpoint
#   export OPENAI_API_KEY=sk-...
#   export ANTHROPIC_API_KEY=sk-ant-...
#   export OLLAMA_BASE_URL=http://localhost:11434
`
	out := append([]byte(header), yamlData...)
	return append(out, footer...), nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
