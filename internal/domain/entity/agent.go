package entity

type AgentStatus string

const (
	StatusContinue AgentStatus = "continue"
	StatusComplete AgentStatus = "complete"
	StatusFailed   AgentStatus = "failed"
)

func (s AgentStatus) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

type FailureReason string

const (
	FailureNone            FailureReason = ""
	FailureOracleGaveUp    FailureReason = "oracle_failed"
	FailureBudgetExhausted FailureReason = "budget_exhausted"
	FailureDecode          FailureReason = "decode_failure"
	FailureOracleError     FailureReason = "oracle_unavailable"
	FailureCapture         FailureReason = "capture_failed"
	FailureCancelled       FailureReason = "cancelled"
)

type StepRecord struct {
	Command       Command
	Result        ExecutionResult
	Reasoning     string
	StuckDetected bool
	AlreadyTried  string
}

// History is the append-only trace of an agent run.
type History struct {
	records []StepRecord
}

func NewHistory(records ...StepRecord) *History {
	h := &History{}
	for _, r := range records {
		h.Append(r)
	}
	return h
}

func (h *History) Append(r StepRecord) {
	h.records = append(h.records, r)
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.records)
}

// Records returns a copy of the trace.
func (h *History) Records() []StepRecord {
	if h == nil {
		return nil
	}
	out := make([]StepRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Last returns up to n most recent records, oldest first.
func (h *History) Last(n int) []StepRecord {
	if h == nil || n <= 0 {
		return nil
	}
	start := len(h.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]StepRecord, len(h.records)-start)
	copy(out, h.records[start:])
	return out
}

type AgentStepState struct {
	RunID         string
	Goal          string
	History       *History
	Status        AgentStatus
	Reasoning     string
	FinalResponse string
	Reason        FailureReason
	Warnings      []string
}
