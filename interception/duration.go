package interception

import (
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/fieldaccess"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/hooking"
	"go.uber.org/zap"
)

// DurationField reads the remaining reaper mode time of the hero controller.
var DurationField = fieldaccess.New("reaper mode duration",
	"reaperState.ReaperModeDurationLeft",
	"crestState.modes.0.ReaperModeDurationLeft",
)

// DurationHook lengthens the reaper mode a bind starts.
type DurationHook struct {
	store     *config.Store
	equipment host.Equipment
	active    func() bool
	field     *fieldaccess.Accessor
	log       *zap.Logger
}

// NewDurationHook creates the hook. It does nothing while active returns
// false.
func NewDurationHook(
	store *config.Store,
	equipment host.Equipment,
	active func() bool,
	log *zap.Logger,
) *DurationHook {
	return &DurationHook{
		store:     store,
		equipment: equipment,
		active:    active,
		field:     DurationField,
		log:       log.Named("duration"),
	}
}

// Methods returns the bind completion method.
func (h *DurationHook) Methods() []host.MethodID {
	return []host.MethodID{host.MethodBindCompleted}
}

// Func scales the duration after the bind completed.
func (h *DurationHook) Func(ctx hooking.HookCtx) {
	defer guard(h.log, "duration")

	if ctx.Pos != host.HookPosAfter || ctx.Item == nil {
		return
	}

	cfg := h.store.Load()
	if !h.active() || !h.equipment.IsEquipped(cfg.Host.CrestID) {
		return
	}

	before, after, err := h.field.Scale(ctx.Item, cfg.DurationMultiplier)
	if err != nil {
		h.log.Error("cannot scale reaper mode duration", zap.Error(err))
		return
	}

	h.log.Info("reaper mode duration scaled",
		zap.Float64("before", before), zap.Float64("after", after))
}
