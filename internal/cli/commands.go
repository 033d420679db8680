package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dyike/CortexHedge/config"
	"github.com/dyike/CortexHedge/internal/debug"
	"github.com/dyike/CortexHedge/internal/logging"
	"github.com/dyike/CortexHedge/internal/ollama"
	"github.com/dyike/CortexHedge/internal/registry"
	"github.com/dyike/CortexHedge/internal/server"
	"github.com/dyike/CortexHedge/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand it serves the
// API.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	serveCmd := newServeCmd(opts)
	rootCmd := &cobra.Command{
		Use:   "cortexhedge",
		Short: "CortexHedge - AI hedge fund backend",
		Long: `CortexHedge runs a team of investor-persona analysts over market data and
aggregates their signals into portfolio decisions. It serves the HTTP API used
by the web frontend and can run analyses from the terminal.`,
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newAnalystsCmd())
	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newOllamaCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Configuration file path")

	return rootCmd
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *globalOptions) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := debug.NewEinoDebugger(a.cfg, a.logger).Initialize(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("eino debug disabled")
	}

	status := ollama.NewService(a.cfg.OllamaURL)
	status.LogStatus(ctx, a.logger)

	if err := a.manager.Watch(ctx, func(cfg config.Config) {
		// model settings are read per run; the level is the only other live field
		cfg.Debug = cfg.Debug || a.cfg.Debug
		zerolog.SetGlobalLevel(logging.Level(&cfg))
	}); err != nil {
		a.logger.Warn().Err(err).Msg("config watch disabled")
	}

	srv := server.New(a.cfg, a.registry, a.service, a.store, status, a.logger)
	return srv.Start(ctx)
}

func newAnalystsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analysts",
		Short: "List the available analysts",
		Run: func(cmd *cobra.Command, args []string) {
			reg := registry.Default()
			fmt.Fprintln(cmd.OutOrStdout(), renderAnalysts(reg.AgentsList()))
			fmt.Fprintln(cmd.OutOrStdout(), renderSwarms(reg.Swarms()))
		},
	}
}

type runOptions struct {
	analysts []string
	swarm    string
	start    string
	end      string
	cash     float64
	provider string
	model    string
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run TICKER...",
		Short: "Run the analyst team on one or more tickers",
		Long: `Run the hedge fund graph locally and print the decisions.
Example: cortexhedge run AAPL MSFT --analysts warren_buffett,michael_burry`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd, opts, ro, args)
		},
	}

	cmd.Flags().StringSliceVar(&ro.analysts, "analysts", nil, "Analyst keys (comma separated)")
	cmd.Flags().StringVar(&ro.swarm, "swarm", "", "Preset analyst group")
	cmd.Flags().StringVar(&ro.start, "start", "", "Start date YYYY-MM-DD (three months before end if empty)")
	cmd.Flags().StringVar(&ro.end, "end", "", "End date YYYY-MM-DD (today if empty)")
	cmd.Flags().Float64Var(&ro.cash, "cash", 0, "Cash to allocate (config initial_cash if 0)")
	cmd.Flags().StringVar(&ro.provider, "provider", "", "Model provider: deepseek, openai or ollama")
	cmd.Flags().StringVar(&ro.model, "model", "", "Model name")
	return cmd
}

func runAnalysis(cmd *cobra.Command, opts *globalOptions, ro *runOptions, tickers []string) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	req := &models.HedgeFundRequest{
		Tickers:        tickers,
		SelectedAgents: ro.analysts,
		Swarm:          ro.swarm,
		StartDate:      ro.start,
		EndDate:        ro.end,
		InitialCash:    ro.cash,
		ModelProvider:  ro.provider,
		ModelName:      ro.model,
	}
	if len(req.SelectedAgents) == 0 && req.Swarm == "" {
		if !isTerminal() {
			return fmt.Errorf("no analysts selected; pass --analysts or --swarm")
		}
		keys, err := PromptForAnalysts(a.registry)
		if err != nil {
			return err
		}
		req.SelectedAgents = keys
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	runID, result, err := a.service.Run(ctx, req, func(ev models.Event) {
		if line := formatEvent(ev); line != "" {
			fmt.Fprintln(out, line)
		}
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderDecisions(result))
	if runID != "" {
		fmt.Fprintln(out, mutedStyle.Render("run "+runID))
	}
	return nil
}

func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cfg, err := loadConfig(opts, bootstrapLogger(opts))
			if err != nil {
				return err
			}
			body, err := json.MarshalIndent(redact(*cfg), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(manager.Path()))
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(opts, bootstrapLogger(opts))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			for _, w := range configWarnings(cfg) {
				fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("! "+w))
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("configuration is valid"))
			return nil
		},
	})

	return configCmd
}

// redact hides credentials but keeps whether they are set.
func redact(cfg config.Config) config.Config {
	for _, s := range []*string{&cfg.OpenAIAPIKey, &cfg.DeepSeekAPIKey, &cfg.FinnhubAPIKey, &cfg.LongportAppSecret, &cfg.LongportAccessToken} {
		if *s != "" {
			*s = "***"
		}
	}
	return cfg
}

func configWarnings(cfg *config.Config) []string {
	var warnings []string
	switch cfg.LLMProvider {
	case config.ProviderDeepSeek:
		if cfg.DeepSeekAPIKey == "" {
			warnings = append(warnings, "DEEPSEEK_API_KEY is not set")
		}
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			warnings = append(warnings, "OPENAI_API_KEY is not set")
		}
	}
	if cfg.DataProvider == config.DataProviderLongport && (cfg.LongportAppKey == "" || cfg.LongportAccessToken == "") {
		warnings = append(warnings, "longport credentials are incomplete")
	}
	if cfg.FinnhubAPIKey == "" {
		warnings = append(warnings, "FINNHUB_API_KEY is not set; news falls back to headline scraping")
	}
	return warnings
}

func newOllamaCmd(opts *globalOptions) *cobra.Command {
	ollamaCmd := &cobra.Command{
		Use:   "ollama",
		Short: "Local Ollama server",
	}
	ollamaCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether Ollama is installed and running",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(opts, bootstrapLogger(opts))
			if err != nil {
				return err
			}
			st := ollama.NewService(cfg.OllamaURL).Check(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), renderOllamaStatus(st))
			return nil
		},
	})
	return ollamaCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "CortexHedge %s\n", strings.TrimSpace(Version))
		},
	}
}
