package executor

import (
	"context"
	"time"

	"desktop-agent/internal/domain/entity"
)

const maxWait = 5 * time.Minute

func (a *Actions) utilityHandlers() []*handler {
	return []*handler{
		newHandler(entity.KindUtility, entity.ActionWait, "Wait for duration seconds (default 1).", []string{"duration"}, a.wait),
		newHandler(entity.KindUtility, entity.ActionDelay, "Same as wait.", []string{"duration"}, a.wait),
	}
}

func (a *Actions) wait(ctx context.Context, cmd entity.Command) entity.ExecutionResult {
	duration := 1.0
	if d, ok := cmd.Params.Float("duration"); ok && d >= 0 {
		duration = d
	}

	d := time.Duration(duration * float64(time.Second))
	if d > maxWait {
		d = maxWait
	}
	if err := a.sleep(ctx, d); err != nil {
		return entity.Failed(entity.CodeCancelled, "Wait interrupted: "+err.Error())
	}
	return entity.Succeeded("Waited for "+seconds(duration)+" seconds", map[string]any{"duration": duration})
}
