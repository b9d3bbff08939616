package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/postcompass/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logJSON bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "postcompass",
	Short: "Post Compass - turn one raw thought into X, LinkedIn and Reddit drafts",
	Long: `Post Compass rewrites a single raw thought into drafts tailored for
X (Twitter), LinkedIn and Reddit, suggests hashtags and subreddits for it,
finds trending discussions, and can fill each network's composer in a
browser it drives.

Drafts are generated through an OpenAI-compatible endpoint. Nothing is ever
posted: filled composers are left for you to review.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the root command. Cancelling ctx stops long-running commands.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("postcompass %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.postcompass/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.BoolVar(&logJSON, "log-json", false, "emit logs as JSON")

	// flag defaults mirror config defaults so an unset flag never masks the
	// config file
	flags.String("provider", defaults.LLM.Provider, "LLM provider (openai, anthropic, ollama)")
	flags.String("model", defaults.LLM.Model, "model name")
	flags.String("base-url", defaults.LLM.BaseURL, "generation endpoint base URL")
	flags.String("tone", defaults.LLM.Tone, "tone applied to every platform (e.g. playful, formal)")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	bindFlag("llm.provider", "provider")
	bindFlag("llm.model", "model")
	bindFlag("llm.base_url", "base-url")
	bindFlag("llm.tone", "tone")
	bindFlag("http.http_proxy", "http-proxy")
	bindFlag("http.https_proxy", "https-proxy")
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

func bindFlag(key, flag string) {
	_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// initConfig loads .env, the config file and POSTCOMPASS_* variables
func initConfig() {
	// .env is optional; values already in the environment win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.HomeDir())
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("POSTCOMPASS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func setupLogging() {
	logrus.SetOutput(os.Stderr)
	if logJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// loadConfig resolves the effective configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(config.HomeDir(), "cache")
	}
	return cfg, nil
}
