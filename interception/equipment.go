package interception

import (
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/hooking"
	"go.uber.org/zap"
)

// EquipmentHook refreshes the extension whenever the equipment changes.
type EquipmentHook struct {
	refresh func(reason string)
	log     *zap.Logger
}

// NewEquipmentHook creates the hook. refresh receives the intercepted method
// as the reason.
func NewEquipmentHook(refresh func(reason string), log *zap.Logger) *EquipmentHook {
	return &EquipmentHook{refresh: refresh, log: log.Named("equipment")}
}

// Methods returns the equipment change methods.
func (h *EquipmentHook) Methods() []host.MethodID {
	return []host.MethodID{
		host.MethodSetEquippedCrest,
		host.MethodRefreshEquippedState,
		host.MethodSendEquippedChangedEvt,
	}
}

// Func refreshes after any of the methods returned.
func (h *EquipmentHook) Func(ctx hooking.HookCtx) {
	defer guard(h.log, "equipment")

	if ctx.Pos != host.HookPosAfter {
		return
	}

	reason := "equipment"
	if d, ok := ctx.Domain.(host.MethodDomain); ok {
		reason = string(d.Method())
	}

	if crest, ok := ctx.Item.(*string); ok && crest != nil {
		h.log.Info("crest changed", zap.String("crest", *crest))
	}

	h.refresh(reason)
}
