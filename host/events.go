package host

import "github.com/sarchlab/rebalance/sim/hooking"

// HookPosFrame fires once per host frame. The item is a Frame.
var HookPosFrame = &hooking.HookPos{Name: "Frame"}

// HookPosSceneChanged fires when the active scene changes. The item is a
// SceneChange.
var HookPosSceneChanged = &hooking.HookPos{Name: "SceneChanged"}

// Frame describes one host frame.
type Frame struct {
	Dt float64
}

// SceneChange names the scenes of a transition.
type SceneChange struct {
	From string
	To   string
}

// Events delivers host notifications to hooks.
type Events interface {
	hooking.Hookable
}

// MethodID names a host method that can be intercepted.
type MethodID string

// Interceptable host methods.
const (
	// Item is *HitInstance.
	MethodApplyDamageScaling MethodID = "HealthManager.ApplyDamageScaling"

	// Item is the hero controller value.
	MethodBindCompleted MethodID = "HeroController.BindCompleted"

	// Item is the crest id as *string.
	MethodSetEquippedCrest MethodID = "ToolItemManager.SetEquippedCrest"

	// Item is nil.
	MethodRefreshEquippedState   MethodID = "ToolItemManager.RefreshEquippedState"
	MethodSendEquippedChangedEvt MethodID = "ToolItemManager.SendEquippedChangedEvent"
)

// HookPosBefore fires before an intercepted method runs. Hooks may rewrite the
// arguments through the item pointer.
var HookPosBefore = &hooking.HookPos{Name: "Before"}

// HookPosAfter fires after an intercepted method returns. Detail points to the
// return value, if any.
var HookPosAfter = &hooking.HookPos{Name: "After"}

// MethodDomain is the hook domain of an intercepted method.
type MethodDomain interface {
	hooking.Hookable
	Method() MethodID
}

// Interceptor attaches hooks around host methods.
type Interceptor interface {
	// Intercept registers hook on method. The hook receives HookPosBefore and
	// HookPosAfter contexts with a MethodDomain as the domain. Unknown
	// methods return an error.
	Intercept(method MethodID, hook hooking.Hook) error
}
