package prompts

import (
	_ "embed"
)

//go:embed agent_step.txt
var AgentStepPrompt string

//go:embed planner.txt
var PlannerPrompt string

//go:embed turn.txt
var TurnPrompt string

//go:embed request.txt
var RequestPrompt string
