package entity

type ExecutionResult struct {
	Success bool
	Message string
	Data    map[string]any
}

func Succeeded(message string, data map[string]any) ExecutionResult {
	if data == nil {
		data = map[string]any{}
	}
	return ExecutionResult{Success: true, Message: message, Data: data}
}

func Failed(code ErrorCode, message string) ExecutionResult {
	return ExecutionResult{
		Success: false,
		Message: message,
		Data:    map[string]any{"error_code": string(code)},
	}
}

func (r ExecutionResult) ErrorCode() ErrorCode {
	if r.Data == nil {
		return ""
	}
	code, _ := r.Data["error_code"].(string)
	return ErrorCode(code)
}

// Point returns the screen coordinate a mouse step acted on, if recorded.
func (r ExecutionResult) Point() (Point, bool) {
	if r.Data == nil {
		return Point{}, false
	}
	x, okX := r.Data["x"].(int)
	y, okY := r.Data["y"].(int)
	if !okX || !okY {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}

// SequenceReport is what callers of a command sequence get back.
type SequenceReport struct {
	RunID          string
	Success        bool
	Results        []ExecutionResult
	StepsAttempted int
}

func (r SequenceReport) Messages() []string {
	out := make([]string, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Message
	}
	return out
}
