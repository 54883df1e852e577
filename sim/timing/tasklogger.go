package timing

import (
	"github.com/sarchlab/rebalance/sim/hooking"
	"go.uber.org/zap"
)

// TaskLogger is a hook that logs continuations as they end.
type TaskLogger struct {
	log *zap.Logger
}

// NewTaskLogger returns a new TaskLogger which writes into the logger.
func NewTaskLogger(log *zap.Logger) *TaskLogger {
	return &TaskLogger{log: log}
}

// Func writes the task information into the logger.
func (l *TaskLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosTaskEnd {
		return
	}

	t, ok := ctx.Item.(*Task)
	if !ok {
		return
	}

	l.log.Debug("continuation ended",
		zap.String("task", t.Name()),
		zap.String("owner", string(t.Owner())),
		zap.Bool("stopped", t.Stopped()))
}
