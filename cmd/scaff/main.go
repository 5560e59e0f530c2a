package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ormasoftchile/scaff/pkg/config"
	"github.com/ormasoftchile/scaff/pkg/logging"
	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/ormasoftchile/scaff/pkg/prompt"
	"github.com/ormasoftchile/scaff/pkg/scaffold"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "scaff",
	Short:         "Run sandboxed project templates",
	Long:          "scaff runs project templates as isolated plugins. A template only sees its own content tree and the answers you give it; scaff decides what touches disk.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		_, err = logging.Init("scaff", logging.Options{Level: level, Format: cfg.LogFormat})
		return err
	},
}

// --- run ---

var (
	runOutput   string
	runDryRun   bool
	runAddTo    string
	runDefaults bool
	runAnswers  string
	runSet      []string
)

var runCmd = &cobra.Command{
	Use:   "run <template>",
	Short: "Run a template into the output directory",
	Long:  "Run the template described by <template> (a template.toml file or the directory holding one).",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	m, err := scaffold.LoadManifest(args[0])
	if err != nil {
		return err
	}

	vars := cfg.DefaultVariables()
	for _, kv := range runSet {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		vars[k] = v
	}

	rc := scaffold.Config{
		Manifest:    m,
		OutputDir:   runOutput,
		AddTo:       runAddTo,
		DryRun:      runDryRun,
		UseDefaults: runDefaults,
		Variables:   vars,
	}
	var scripted *prompt.Scripted
	if runAnswers != "" {
		scripted, err = prompt.LoadScripted(runAnswers)
		if err != nil {
			return err
		}
		rc.Prompter = scripted
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	outcome, err := (&scaffold.Runner{Log: logging.L()}).Run(ctx, rc)
	if interrupted(ctx, err) {
		if outcome != nil && outcome.Applied > 0 {
			fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("interrupted after %d of %d actions; completed actions were not rolled back", outcome.Applied, len(outcome.Actions))))
		}
		fmt.Fprintln(os.Stderr, "Cancelled.")
		return nil
	}
	if err != nil {
		if outcome != nil && outcome.Applied > 0 {
			fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("stopped after %d of %d actions; completed actions were not rolled back", outcome.Applied, len(outcome.Actions))))
		}
		return err
	}
	if outcome.Cancelled {
		fmt.Fprintln(os.Stderr, "Cancelled.")
		return nil
	}
	if scripted != nil {
		for _, label := range scripted.Unused() {
			fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("answer %q was never asked for", label)))
		}
	}
	if runDryRun {
		fmt.Fprintln(os.Stderr, dimStyle.Render(fmt.Sprintf("dry run: %d actions, nothing written", len(outcome.Actions))))
		return nil
	}
	fmt.Fprintln(os.Stderr, okStyle.Render(fmt.Sprintf("✓ %d actions applied", outcome.Applied))+dimStyle.Render(" into "+runOutput))
	return nil
}

// interrupted reports whether err is the consequence of the user
// interrupting the run. Ctrl-C at a prompt already surfaces as a cancelled
// outcome; elsewhere it cancels ctx, which fails the executor or kills the
// plugin process.
func interrupted(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a template's run result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := plugin.GenerateRunResultSchema()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scaff %s (build: %s, host api: %s)\n", version, commit, scaffold.HostVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.scaff/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")

	runCmd.Flags().StringVarP(&runOutput, "output", "o", ".", "Output directory")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print the actions instead of performing them")
	runCmd.Flags().StringVar(&runAddTo, "add-to", "", "Add to the application described by this manifest instead of creating a new one")
	runCmd.Flags().BoolVar(&runDefaults, "defaults", false, "Answer every prompt with its default value")
	runCmd.Flags().StringVar(&runAnswers, "answers", "", "YAML file with scripted prompt answers")
	runCmd.Flags().StringArrayVar(&runSet, "set", nil, "Set a variable (key=value), repeatable")
	runCmd.MarkFlagsMutuallyExclusive("defaults", "answers")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
