package datarecording

import (
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/lifecycle"
	"github.com/sarchlab/rebalance/sim/hooking"
	"github.com/sarchlab/rebalance/spawning"
)

// Table names written by the Tracer.
const (
	EventTable = "events"
	SpawnTable = "spawns"
)

// Event kinds.
const (
	KindSession = "session"
	KindPatch   = "patch"
	KindParam   = "param"
	KindCache   = "cache"
	KindScene   = "scene"
)

// EventRow is one lifecycle event. Param rows carry the previous and the
// applied value; cache rows carry the pooled object count in Old and the
// cached asset count in Value.
type EventRow struct {
	Session string
	Time    float64
	Kind    string
	Subject string
	Op      string
	Old     float64
	Value   float64
	Error   string
}

// SpawnRow is one spawned cross slash.
type SpawnRow struct {
	Session  string
	Time     float64
	X        float64
	Y        float64
	Mirrored bool
	Element  string
	DotTicks int
}

// Tracer is a hook on the coordinator that records its events.
type Tracer struct {
	recorder DataRecorder
	clock    func() float64
	session  string
}

// NewTracer creates the tracer's tables on recorder. The clock stamps every
// row.
func NewTracer(recorder DataRecorder, clock func() float64) *Tracer {
	recorder.CreateTable(EventTable, EventRow{})
	recorder.CreateTable(SpawnTable, SpawnRow{})

	return &Tracer{recorder: recorder, clock: clock}
}

// Func records the event carried by ctx.
func (t *Tracer) Func(ctx hooking.HookCtx) {
	switch item := ctx.Item.(type) {
	case lifecycle.SessionInfo:
		t.recordSession(ctx.Pos, item)
	case lifecycle.PatchEvent:
		row := t.row(KindPatch, item.Target, item.Op)
		if item.Err != nil {
			row.Error = item.Err.Error()
		}

		t.insert(row)
	case lifecycle.ParamChange:
		row := t.row(KindParam, item.ID, "apply")
		row.Old = item.Old
		row.Value = item.Value
		t.insert(row)
	case lifecycle.CacheEvent:
		row := t.row(KindCache, "content", item.Op)
		row.Old = float64(item.Pooled)
		row.Value = float64(item.Assets)
		t.insert(row)
	case host.SceneChange:
		row := t.row(KindScene, item.To, "load")
		t.insert(row)
	case spawning.Context:
		t.recorder.InsertData(SpawnTable, SpawnRow{
			Session:  t.session,
			Time:     t.clock(),
			X:        item.Position.X,
			Y:        item.Position.Y,
			Mirrored: item.Rotation == host.Mirrored,
			Element:  item.Imbuement.Element,
			DotTicks: item.DotTicks,
		})
	}
}

func (t *Tracer) recordSession(pos *hooking.HookPos, info lifecycle.SessionInfo) {
	op := "start"
	if pos == lifecycle.HookPosSessionEnded {
		op = "end"
	}

	t.session = info.ID
	t.insert(t.row(KindSession, info.Reason, op))

	if op == "end" {
		t.session = ""
	}
}

func (t *Tracer) row(kind, subject, op string) EventRow {
	return EventRow{
		Session: t.session,
		Time:    t.clock(),
		Kind:    kind,
		Subject: subject,
		Op:      op,
	}
}

func (t *Tracer) insert(row EventRow) {
	t.recorder.InsertData(EventTable, row)
}
