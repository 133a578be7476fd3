package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinical-agent/internal/agent"
	"clinical-agent/internal/clinicaltrials"
	"clinical-agent/internal/privacy"
	"clinical-agent/internal/tool"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question using the ClinicalTrials.gov API",
	Example: `  clinical-agent ask "How many recruiting asthma studies are there?"
  clinical-agent ask --steps --max-iterations 5 "Which sponsors run phase 3 melanoma trials?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	addAskFlags(askCmd)
	rootCmd.AddCommand(askCmd)
}

func addAskFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("steps", false, "print the intermediate tool calls and observations")
	cmd.Flags().Int("max-iterations", 0, "cap on agent steps, -1 for no cap (default from config)")
	cmd.Flags().Duration("max-time", 0, "cap on wall time per question (default from config)")
	cmd.Flags().String("early-stopping", "", `what to return at a limit: "force" or "generate"`)
	cmd.Flags().Bool("handle-parsing-errors", false, "feed unparseable model output back to the model instead of failing")
	cmd.Flags().Bool("no-history", false, "do not record this run")
}

func runAsk(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		app.cfg.History.Enabled = false
	}

	opts := clinicaltrials.OptionsFromConfig(app.cfg)
	if err := applyAskFlags(cmd, &opts); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec, err := app.newAgent(ctx, opts)
	if err != nil {
		return err
	}

	question, mapping := privacy.NewRedactor(app.cfg.Privacy).Redact(strings.Join(args, " "))
	if mapping.Len() > 0 {
		app.log.Warn("masked personal data before querying", zap.Int("values", mapping.Len()))
	}

	res, err := exec.Call(ctx, question)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.ReturnIntermediateSteps {
		printSteps(out, mapping.RestoreSteps(res.IntermediateSteps))
	}
	fmt.Fprintln(out, mapping.Restore(res.Output))
	if res.Stopped {
		fmt.Fprintf(cmd.ErrOrStderr(), "(stopped after %d steps, %s)\n", res.Iterations, res.Duration.Round(time.Millisecond))
	}
	return nil
}

func applyAskFlags(cmd *cobra.Command, opts *clinicaltrials.Options) error {
	flags := cmd.Flags()
	if flags.Changed("steps") {
		opts.ReturnIntermediateSteps, _ = flags.GetBool("steps")
	}
	if flags.Changed("max-iterations") {
		opts.MaxIterations, _ = flags.GetInt("max-iterations")
	}
	if flags.Changed("max-time") {
		opts.MaxExecutionTime, _ = flags.GetDuration("max-time")
	}
	if flags.Changed("early-stopping") {
		method, _ := flags.GetString("early-stopping")
		switch m := agent.EarlyStoppingMethod(method); m {
		case agent.EarlyStoppingForce, agent.EarlyStoppingGenerate:
			opts.EarlyStoppingMethod = m
		default:
			return fmt.Errorf("--early-stopping must be %q or %q, got %q", agent.EarlyStoppingForce, agent.EarlyStoppingGenerate, method)
		}
	}
	if flags.Changed("handle-parsing-errors") {
		handle, _ := flags.GetBool("handle-parsing-errors")
		if opts.ExecutorExtra == nil {
			opts.ExecutorExtra = map[string]any{}
		}
		opts.ExecutorExtra[agent.ExtraHandleParsingErrors] = handle
	}
	return nil
}

func printSteps(w io.Writer, steps []agent.Step) {
	for i, s := range steps {
		fmt.Fprintf(w, "[%d] %s(%s)\n", i+1, s.Action.Tool, s.Action.ToolInput)
		fmt.Fprintf(w, "    %s\n", truncate(s.Observation, 300))
	}
	if len(steps) > 0 {
		fmt.Fprintln(w)
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return tool.Clip(s, n) + "..."
}
