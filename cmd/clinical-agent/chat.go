package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinical-agent/internal/clinicaltrials"
	"clinical-agent/internal/privacy"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively, one per line",
	Long: `Read questions from stdin one line at a time and answer each with a fresh
agent run. Type "exit" or send EOF (Ctrl-D) to quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	addAskFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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
	redactor := privacy.NewRedactor(app.cfg.Privacy)

	return repl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, line string) (string, error) {
		question, mapping := redactor.Redact(line)
		if mapping.Len() > 0 {
			app.log.Warn("masked personal data before querying", zap.Int("values", mapping.Len()))
		}
		res, err := exec.Call(ctx, question)
		if err != nil {
			return "", err
		}
		if opts.ReturnIntermediateSteps {
			printSteps(cmd.OutOrStdout(), res.IntermediateSteps)
		}
		return mapping.Restore(res.Output), nil
	})
}

// repl answers each non-empty input line until EOF, "exit" or cancellation.
// A failed question is reported and the loop goes on.
func repl(ctx context.Context, in io.Reader, out io.Writer, answer func(context.Context, string) (string, error)) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "exit", "quit":
			return nil
		}

		reply, err := answer(ctx, text)
		if err != nil {
			fmt.Fprintf(out, "\nError: %v\n\n> ", err)
			continue
		}
		fmt.Fprintf(out, "\n%s\n\n> ", reply)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
