package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"scenario-analysis/web/internal/analysis"
	"scenario-analysis/web/internal/config"
	"scenario-analysis/web/internal/form"
	"scenario-analysis/web/internal/logging"
	"scenario-analysis/web/internal/render"
)

type analyzeOptions struct {
	constraints string
	endpoint    string
	timeout     time.Duration
	output      string
	configPath  string
	verbose     bool
}

const busyMessage = "Analyzing your scenario..."

// errAnalysisFailed is what the user sees for any backend failure; the cause is logged.
var errAnalysisFailed = errors.New(form.GenericError)

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "scenario-analyze SCENARIO",
		Short: "Submit a scenario for AI analysis",
		Long: `scenario-analyze sends a scenario description and its constraints to the
analysis backend and prints the summary, pitfalls, strategies, resources and
disclaimer it returns.

Examples:
  # Analyze a scenario with two constraints
  scenario-analyze "Open a second bakery location" -c "Budget: $10,000, Deadline: 6 weeks"

  # Use a different backend and print JSON
  scenario-analyze "Migrate billing" -c "No downtime" --endpoint http://analysis:8080/scenario/analyze -o json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.constraints, "constraints", "c", "", "Comma separated constraints (e.g. \"Budget: $10,000, Deadline: 6 weeks\")")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "Analysis endpoint URL (overrides configuration)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "HTTP timeout for the analysis call (overrides configuration)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", render.FormatHuman, "Output format (human, json, yaml)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a scenario.yaml config file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	_ = cmd.MarkFlagRequired("constraints")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, scenario string) error {
	if err := render.ValidateFormat(opts.output); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath, func(c *config.Config) {
		if cmd.Flags().Changed("endpoint") {
			c.Analysis.Endpoint = opts.endpoint
		}
		if cmd.Flags().Changed("timeout") {
			c.Analysis.Timeout = opts.timeout
		}
	})
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	closer, err := logging.Setup(logging.Options{Level: level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer closer.Close()

	client, err := analysis.NewClient(analysis.Config{
		Endpoint: cfg.Analysis.Endpoint,
		Timeout:  cfg.Analysis.Timeout,
	})
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	printHeader(errOut, scenario, opts.constraints, client.Endpoint())

	f := form.New(client)
	f.OnChange(busyIndicator(errOut))

	view, err := f.Submit(cmd.Context(), scenario, opts.constraints)
	if err != nil {
		return err
	}
	if view.Phase == form.PhaseError {
		return errAnalysisFailed
	}

	printSuccess(errOut, "Analysis complete")
	return render.Display(cmd.OutOrStdout(), *view.Result, opts.output)
}

// busyIndicator animates a spinner on terminals and prints a single status
// line everywhere else.
func busyIndicator(w io.Writer) form.Observer {
	file, ok := w.(*os.File)
	if !ok || !isTerminal(file) {
		return func(v form.View) {
			if v.Busy() {
				fmt.Fprintln(w, busyMessage)
			}
		}
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriterFile(file))
	s.Suffix = " " + busyMessage
	return func(v form.View) {
		if v.Busy() {
			s.Start()
			return
		}
		s.Stop()
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printHeader(w io.Writer, scenario, constraints, endpoint string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "Scenario Analysis AI")
	fmt.Fprintf(w, "Scenario:    %s\n", scenario)
	fmt.Fprintf(w, "Constraints: %s\n", constraints)
	fmt.Fprintf(w, "Endpoint:    %s\n", endpoint)
	fmt.Fprintln(w)
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}
