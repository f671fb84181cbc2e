package entity

// Plan is the outcome of a single-shot planning request.
type Plan struct {
	Success              bool
	Commands             []Command
	Explanation          string
	Warnings             []string
	RequiresConfirmation bool
	Invalid              []string
}

type ActionDefinition struct {
	Kind        CommandKind
	Action      CommandAction
	Description string
	Parameters  []string
}
