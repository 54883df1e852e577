package timing

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/rebalance/sim/hooking"
	"go.uber.org/zap"
)

// Engine runs continuations, tickers and posted commands on the host frame.
// All methods except Post and PostAndWait must be called from the frame loop.
type Engine struct {
	*hooking.HookableBase

	log *zap.Logger

	now   VTimeInSec
	frame uint64

	tasks    []*Task
	sleepers EventQueue
	tickers  []Ticker

	inboxLock sync.Mutex
	inbox     []func()
}

const (
	postQueued int32 = iota
	postRunning
	postAbandoned
)

// NewEngine creates a new engine.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	e := new(Engine)
	e.HookableBase = hooking.NewHookableBase()
	e.log = log
	e.sleepers = NewEventQueue()

	return e
}

// Now returns the current host time.
func (e *Engine) Now() VTimeInSec {
	return e.now
}

// Frame returns the number of frames advanced so far.
func (e *Engine) Frame() uint64 {
	return e.frame
}

// Post queues fn to run at the start of the next frame. It is safe to call from
// any goroutine.
func (e *Engine) Post(fn func()) {
	e.inboxLock.Lock()
	e.inbox = append(e.inbox, fn)
	e.inboxLock.Unlock()
}

// PostAndWait posts fn and blocks until the frame loop has run it or ctx is
// done. When ctx ends first, fn is dropped and the context error returned; a
// fn that already started is waited for and reported as run.
func (e *Engine) PostAndWait(ctx context.Context, fn func()) error {
	var state atomic.Int32

	done := make(chan struct{})

	e.Post(func() {
		if !state.CompareAndSwap(postQueued, postRunning) {
			return
		}

		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if state.CompareAndSwap(postQueued, postAbandoned) {
			return ctx.Err()
		}

		<-done

		return nil
	}
}

// Schedule registers an event to be delivered when the host clock reaches its
// time.
func (e *Engine) Schedule(evt Event) {
	if evt.Time() < e.now {
		panic(fmt.Sprintf(
			"cannot schedule event in the past, evt %.10f, now %.10f",
			evt.Time(), e.now))
	}

	e.sleepers.Push(evt)
}

// Start runs the task until its first suspension and keeps it on the frame
// loop afterwards.
func (e *Engine) Start(owner Owner, t *Task) *Task {
	if t.started {
		panic("task " + t.name + " started twice")
	}

	t.started = true
	t.owner = owner

	if e.runTask(t) {
		return t
	}

	e.tasks = append(e.tasks, t)

	return t
}

// StopAll cancels every unfinished task of owner and returns how many were
// cancelled.
func (e *Engine) StopAll(owner Owner) int {
	n := 0

	for _, t := range e.tasks {
		if t.owner != owner || t.Finished() {
			continue
		}

		e.stop(t)
		n++
	}

	return n
}

// Stop cancels a single task.
func (e *Engine) Stop(t *Task) {
	if t.Finished() {
		return
	}

	e.stop(t)
}

func (e *Engine) stop(t *Task) {
	t.stopped = true
	t.sleeping = false
	e.finish(t)
}

// Running returns the number of unfinished tasks of owner.
func (e *Engine) Running(owner Owner) int {
	n := 0

	for _, t := range e.tasks {
		if t.owner == owner && !t.Finished() {
			n++
		}
	}

	return n
}

// RegisterTicker adds a ticker that is ticked once per frame, after the tasks.
func (e *Engine) RegisterTicker(t Ticker) {
	e.tickers = append(e.tickers, t)
}

// UnregisterTicker removes a ticker.
func (e *Engine) UnregisterTicker(t Ticker) {
	for i, registered := range e.tickers {
		if registered == t {
			e.tickers = append(e.tickers[:i], e.tickers[i+1:]...)
			return
		}
	}
}

// Advance moves the host clock forward by dt and runs one frame.
func (e *Engine) Advance(dt VTimeInSec) {
	e.frame++
	e.now += dt

	e.drainInbox()
	e.invoke(HookPosBeforeFrame, e.frame)
	e.deliverWakeEvents()
	e.runTasks()
	e.tick()
	e.compact()
	e.invoke(HookPosAfterFrame, e.frame)
}

func (e *Engine) invoke(pos *hooking.HookPos, item any) {
	if e.NumHooks() == 0 {
		return
	}

	e.InvokeHook(hooking.HookCtx{
		Domain: e,
		Pos:    pos,
		Item:   item,
	})
}

func (e *Engine) drainInbox() {
	e.inboxLock.Lock()
	cmds := e.inbox
	e.inbox = nil
	e.inboxLock.Unlock()

	for _, cmd := range cmds {
		e.safely("posted command", cmd)
	}
}

func (e *Engine) deliverWakeEvents() {
	for e.sleepers.Len() > 0 && e.sleepers.Peek().Time() <= e.now {
		evt := e.sleepers.Pop()

		err := evt.Handler().Handle(evt)
		if err != nil {
			e.log.Error("event handling failed", zap.Error(err))
		}
	}
}

func (e *Engine) runTasks() {
	snapshot := make([]*Task, len(e.tasks))
	copy(snapshot, e.tasks)

	for _, t := range snapshot {
		if t.Finished() || t.sleeping || t.lastRunFrame == e.frame {
			continue
		}

		e.runTask(t)
	}
}

// runTask returns true if the task finished.
func (e *Engine) runTask(t *Task) (finished bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("continuation panicked",
				zap.String("task", t.name),
				zap.String("owner", string(t.owner)),
				zap.Any("panic", r))
			e.stop(t)

			finished = true
		}
	}()

	if !t.run(e) {
		return false
	}

	if t.done {
		e.finish(t)
	}

	return true
}

func (e *Engine) finish(t *Task) {
	e.invoke(HookPosTaskEnd, t)
}

func (e *Engine) tick() {
	tickers := make([]Ticker, len(e.tickers))
	copy(tickers, e.tickers)

	for _, t := range tickers {
		e.safely("ticker", func() { t.Tick() })
	}
}

func (e *Engine) compact() {
	live := e.tasks[:0]

	for _, t := range e.tasks {
		if !t.Finished() {
			live = append(live, t)
		}
	}

	for i := len(live); i < len(e.tasks); i++ {
		e.tasks[i] = nil
	}

	e.tasks = live
}

func (e *Engine) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(what+" panicked", zap.Any("panic", r))
		}
	}()

	fn()
}
