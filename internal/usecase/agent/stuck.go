package agent

import (
	"slices"
	"strings"

	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/prompts"
)

// stuckWindow is how many recent records are compared against a new step.
const stuckWindow = 3

// BuildTurnPrompt renders the user prompt of one turn: the goal, the whole
// history and, when any of the last records was flagged stuck, a block that
// forbids its target.
func BuildTurnPrompt(goal string, history *entity.History, stepsLeft int) (string, error) {
	records := history.Records()
	steps := make([]prompts.TurnStep, len(records))
	for i, rec := range records {
		steps[i] = prompts.TurnStep{
			Number:       i + 1,
			Command:      rec.Command.String(),
			Success:      rec.Result.Success,
			Message:      rec.Result.Message,
			Stuck:        rec.StuckDetected,
			AlreadyTried: rec.AlreadyTried,
		}
	}

	tried := triedTargets(history)
	already := ""
	if len(tried) > 0 {
		already = tried[0]
	}

	return prompts.RenderTurn(prompts.TurnData{
		Goal:         goal,
		Steps:        steps,
		AlreadyTried: already,
		StepsLeft:    max(stepsLeft, 0),
	})
}

// triedTargets returns the already_tried targets of stuck records within the
// window, newest first.
func triedTargets(history *entity.History) []string {
	recent := history.Last(stuckWindow)
	var out []string
	seen := map[string]bool{}
	for i := len(recent) - 1; i >= 0; i-- {
		rec := recent[i]
		if !rec.StuckDetected || rec.AlreadyTried == "" {
			continue
		}
		key := normalizeTarget(rec.AlreadyTried)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec.AlreadyTried)
	}
	return out
}

// excludeTried adds tried targets to the exclude list of commands that accept
// one.
func excludeTried(cmd entity.Command, tried []string) entity.Command {
	if len(tried) == 0 {
		return cmd
	}
	rule, ok := entity.RuleFor(cmd.Kind, cmd.Action)
	if !ok || !slices.Contains(rule.Optional, "exclude") {
		return cmd
	}

	exclude := cmd.Params.Strings("exclude")
	for _, t := range tried {
		if !containsFold(exclude, t) {
			exclude = append(exclude, t)
		}
	}
	cmd.Params = cmd.Params.With("exclude", exclude)
	return cmd
}

// detectStuck compares cmd against prior records. A step is stuck when it
// aims at the same target as a recent one and that attempt left no trace of
// progress: the same failure message, or the same resolved coordinate.
func detectStuck(prior []entity.StepRecord, cmd entity.Command, result entity.ExecutionResult) (string, bool) {
	target := cmd.Target()
	key := normalizeTarget(target)
	if key == "" {
		return "", false
	}
	point, hasPoint := result.Point()

	for i := len(prior) - 1; i >= 0; i-- {
		rec := prior[i]
		if normalizeTarget(rec.Command.Target()) != key {
			continue
		}
		if !result.Success && !rec.Result.Success && rec.Result.Message == result.Message {
			return target, true
		}
		if p, ok := rec.Result.Point(); ok && hasPoint && p == point {
			return target, true
		}
	}
	return "", false
}

func normalizeTarget(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, `"'`)
	return strings.Join(strings.Fields(s), " ")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
