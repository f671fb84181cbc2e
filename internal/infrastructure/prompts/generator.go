package prompts

import (
	"bytes"
	"sort"
	"strings"
	"text/template"

	"desktop-agent/internal/application/port/output"
)

var funcs = template.FuncMap{"join": strings.Join}

type ActionInfo struct {
	Kind        string
	Action      string
	Description string
	Parameters  []string
}

type SystemPromptData struct {
	Actions []ActionInfo
}

// GenerateSystemPrompt renders baseTemplate with the catalogue of registered
// actions.
func GenerateSystemPrompt(baseTemplate string, registry output.ActionRegistry) (string, error) {
	defs := registry.Definitions()
	infos := make([]ActionInfo, 0, len(defs))

	for _, def := range defs {
		infos = append(infos, ActionInfo{
			Kind:        string(def.Kind),
			Action:      string(def.Action),
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}

	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].Kind != infos[j].Kind {
			return infos[i].Kind < infos[j].Kind
		}
		return infos[i].Action < infos[j].Action
	})

	return render("system", baseTemplate, SystemPromptData{Actions: infos})
}

type TurnStep struct {
	Number       int
	Command      string
	Success      bool
	Message      string
	Stuck        bool
	AlreadyTried string
}

type TurnData struct {
	Goal         string
	Steps        []TurnStep
	AlreadyTried string
	StepsLeft    int
}

func RenderTurn(data TurnData) (string, error) {
	return render("turn", TurnPrompt, data)
}

type RequestData struct {
	Request string
}

func RenderRequest(request string) (string, error) {
	return render("request", RequestPrompt, RequestData{Request: request})
}

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
