package lifecycle

import (
	"github.com/sarchlab/rebalance/sim/hooking"
)

// Lifecycle hook positions. Observers such as the recorder and the monitor
// attach to the Coordinator.
var (
	// HookPosSessionStarted carries a SessionInfo.
	HookPosSessionStarted = &hooking.HookPos{Name: "SessionStarted"}

	// HookPosSessionEnded carries a SessionInfo.
	HookPosSessionEnded = &hooking.HookPos{Name: "SessionEnded"}

	// HookPosPatch carries a PatchEvent.
	HookPosPatch = &hooking.HookPos{Name: "Patch"}

	// HookPosParamApplied carries a ParamChange.
	HookPosParamApplied = &hooking.HookPos{Name: "ParamApplied"}

	// HookPosScene carries a host.SceneChange.
	HookPosScene = &hooking.HookPos{Name: "Scene"}

	// HookPosCache carries a CacheEvent.
	HookPosCache = &hooking.HookPos{Name: "Cache"}
)

// SessionInfo describes a session.
type SessionInfo struct {
	ID     string
	Reason string
	Time   float64
}

// Patch targets.
const (
	TargetHeavy      = "heavy"
	TargetNormal     = "normal"
	TargetAttraction = "attraction"
	TargetPrefab     = "prefab"
)

// Patch operations.
const (
	OpApply    = "apply"
	OpRollback = "rollback"
	OpReset    = "reset"
	OpPrepare  = "prepare"
)

// PatchEvent reports one patch operation.
type PatchEvent struct {
	Target string
	Op     string
	Err    error
}

// ParamChange reports one applied parameter.
type ParamChange struct {
	ID    string
	Old   float64
	Value float64
}

// Cache operations.
const (
	CacheInitialize = "initialize"
	CacheRevalidate = "revalidate"
	CacheCleanup    = "cleanup"
)

// CacheEvent reports a cache or pool maintenance step.
type CacheEvent struct {
	Op     string
	Assets int
	Pooled int
}
