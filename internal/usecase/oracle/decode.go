package oracle

import (
	"fmt"
	"math"
	"strings"

	"desktop-agent/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultCommandConfidence = 0.8

// CommandDoc is one command as the oracle writes it. Both "command_type" and
// "kind" are accepted for the kind.
type CommandDoc struct {
	CommandType string        `json:"command_type"`
	Kind        string        `json:"kind"`
	Action      string        `json:"action"`
	Parameters  entity.Params `json:"parameters"`
	Confidence  *float64      `json:"confidence"`
	RawText     string        `json:"raw_text"`
}

// PlanDoc is the single-shot planning response.
type PlanDoc struct {
	Success              *bool        `json:"success"`
	Commands             []CommandDoc `json:"commands"`
	Explanation          string       `json:"explanation"`
	Warnings             []string     `json:"warnings"`
	RequiresConfirmation bool         `json:"requires_confirmation"`
}

// StepDoc is one agent turn.
type StepDoc struct {
	Success       *bool        `json:"success"`
	Status        string       `json:"status"`
	Reasoning     string       `json:"reasoning"`
	Commands      []CommandDoc `json:"commands"`
	FinalResponse string       `json:"final_response"`
	Warnings      []string     `json:"warnings"`
}

// ExtractJSON returns the text between the first '{' and the last '}'.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object in response", entity.ErrOracleDecode)
	}
	return response[start : end+1], nil
}

func DecodePlan(response string) (*PlanDoc, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}
	var doc PlanDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrOracleDecode, err)
	}
	return &doc, nil
}

func DecodeStep(response string) (*StepDoc, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}
	var doc StepDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrOracleDecode, err)
	}

	doc.Status = strings.ToLower(strings.TrimSpace(doc.Status))
	switch entity.AgentStatus(doc.Status) {
	case entity.StatusContinue, entity.StatusComplete, entity.StatusFailed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrOracleDecode, doc.Status)
	}
	return &doc, nil
}

func (d *StepDoc) AgentStatus() entity.AgentStatus {
	return entity.AgentStatus(d.Status)
}

// Succeeded defaults to true when the oracle leaves the field out.
func (d *PlanDoc) Succeeded() bool {
	return d.Success == nil || *d.Success
}

var coordinateKeys = []string{"x", "y", "from_x", "from_y", "to_x", "to_y"}

// ToCommand validates the document and builds a Command. Coordinates are
// multiplied by scale to map screenshot pixels onto screen pixels.
func (d CommandDoc) ToCommand(scale float64) (entity.Command, error) {
	kind := d.CommandType
	if kind == "" {
		kind = d.Kind
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	action := strings.ToLower(strings.TrimSpace(d.Action))

	if _, ok := entity.RuleFor(entity.CommandKind(kind), entity.CommandAction(action)); !ok {
		return entity.Command{}, fmt.Errorf("%w: %s/%s", entity.ErrInvalidCommand, kind, action)
	}

	params := d.Parameters
	if scale > 0 && scale != 1 {
		for _, key := range coordinateKeys {
			if v, ok := params.Float(key); ok {
				params = params.With(key, int(math.Round(v*scale)))
			}
		}
	}

	confidence := defaultCommandConfidence
	if d.Confidence != nil {
		confidence = *d.Confidence
	}
	raw := d.RawText
	if raw == "" {
		raw = kind + " " + action
	}

	cmd := entity.NewCommand(entity.CommandKind(kind), entity.CommandAction(action), params, confidence, raw)
	if err := cmd.Validate(); err != nil {
		return entity.Command{}, err
	}
	return cmd, nil
}
