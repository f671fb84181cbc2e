package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"desktop-agent/internal/application/service"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"
	"desktop-agent/internal/usecase/executor"
	"desktop-agent/internal/usecase/parser"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "desktop-agent",
		Short:         "Drive the screen with natural-language commands.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&a.headless, "headless", false, "run the browser surface without a window")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Minute, "overall time limit of a run")

	root.AddCommand(
		newRunCmd(a),
		newPlanCmd(a),
		newAgentCmd(a),
		newParseCmd(),
		newSuggestCmd(),
		newActionsCmd(),
	)
	return root
}

func newRunCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "run <text>",
		Short: "Parse text into commands and execute them in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			c, err := a.build(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			report, err := c.Session.RunText(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), reportJSON(report))
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "plan <request>",
		Short: "Ask the oracle for a command plan and execute it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			c, err := a.build(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			request := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			if dryRun {
				plan, err := c.Planner.Plan(ctx, request)
				if err != nil {
					return err
				}
				printPlan(out, plan)
				return nil
			}

			plan, report, err := c.Session.RunPlan(ctx, request)
			if err != nil {
				return err
			}
			printPlan(out, plan)
			return printReport(out, report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without executing it")
	return cmd
}

func newAgentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent <goal>",
		Short: "Pursue a goal one observed step at a time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd.Context())
			defer cancel()

			c, err := a.build(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			state, err := c.Session.RunAgent(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\nFINAL RESPONSE:")
			fmt.Fprintln(out, state.FinalResponse)
			fmt.Fprintf(out, "status=%s steps=%d run_id=%s\n", state.Status, state.History.Len(), state.RunID)
			if state.Status != entity.StatusComplete {
				return fmt.Errorf("agent stopped: %s", state.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&a.maxSteps, "max-steps", 0, "step budget of the run (default from AGENT_MAX_STEPS)")
	return cmd
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text>",
		Short: "Show the commands text parses into without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds := parser.New(logger.NewNop()).ParseSequence(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			for i, c := range cmds {
				line := fmt.Sprintf("%d. %s (confidence %.2f)", i+1, c.String(), c.Confidence)
				if err := c.Validate(); err != nil {
					color.New(color.FgRed).Fprintf(out, "%s: %v\n", line, err)
					continue
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [partial]",
		Short: "Complete a partially typed command",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partial := ""
			if len(args) == 1 {
				partial = args[0]
			}
			for _, s := range parser.New(logger.NewNop()).Suggestions(partial) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List every action the executor understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := service.NewActionRegistry()
			executor.NewActions(executor.Ports{}, logger.NewNop()).Register(registry)

			out := cmd.OutOrStdout()
			for _, def := range registry.Definitions() {
				fmt.Fprintf(out, "%s/%s", def.Kind, def.Action)
				if len(def.Parameters) > 0 {
					fmt.Fprintf(out, " (%s)", strings.Join(def.Parameters, ", "))
				}
				fmt.Fprintf(out, " - %s\n", def.Description)
			}
			return nil
		},
	}
}

func printPlan(out io.Writer, plan *entity.Plan) {
	if plan.Explanation != "" {
		fmt.Fprintln(out, plan.Explanation)
	}
	for i, c := range plan.Commands {
		fmt.Fprintf(out, "  %d. %s\n", i+1, c.String())
	}
	for _, msg := range plan.Invalid {
		color.New(color.FgRed).Fprintf(out, "  %s\n", msg)
	}
	for _, w := range plan.Warnings {
		color.New(color.FgYellow).Fprintf(out, "  warning: %s\n", w)
	}
}

func printReport(out io.Writer, report *entity.SequenceReport) error {
	status := color.New(color.FgGreen, color.Bold).Sprint("SUCCESS")
	if !report.Success {
		status = color.New(color.FgRed, color.Bold).Sprint("FAILED")
	}
	fmt.Fprintf(out, "\n%s: %d step(s), run %s\n", status, report.StepsAttempted, report.RunID)
	if !report.Success {
		return fmt.Errorf("run %s failed", report.RunID)
	}
	return nil
}

type resultJSON struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

type sequenceJSON struct {
	Success        bool         `json:"success"`
	RunID          string       `json:"run_id"`
	StepsAttempted int          `json:"steps_attempted"`
	Results        []resultJSON `json:"results"`
}

func reportJSON(report *entity.SequenceReport) sequenceJSON {
	out := sequenceJSON{
		Success:        report.Success,
		RunID:          report.RunID,
		StepsAttempted: report.StepsAttempted,
		Results:        make([]resultJSON, len(report.Results)),
	}
	for i, r := range report.Results {
		out.Results[i] = resultJSON{Success: r.Success, Message: r.Message, ErrorCode: string(r.ErrorCode())}
	}
	return out
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
