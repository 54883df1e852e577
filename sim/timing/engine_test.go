package timing

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rebalance/sim/hooking"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ = Describe("Engine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *Engine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewEngine(zap.NewNop())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run a task until the first suspension on start", func() {
		steps := []string{}

		task := NewTask("t").
			Do(func() { steps = append(steps, "a") }).
			WaitFrames(1).
			Do(func() { steps = append(steps, "b") })

		engine.Start("owner", task)

		Expect(steps).To(Equal([]string{"a"}))
		Expect(engine.Running("owner")).To(Equal(1))

		engine.Advance(0.016)

		Expect(steps).To(Equal([]string{"a", "b"}))
		Expect(task.Done()).To(BeTrue())
		Expect(engine.Running("owner")).To(Equal(0))
	})

	It("should finish a task with no waits immediately", func() {
		ran := false

		task := engine.Start("owner", NewTask("t").Do(func() { ran = true }))

		Expect(ran).To(BeTrue())
		Expect(task.Done()).To(BeTrue())
	})

	It("should wait until the predicate holds", func() {
		ready := false
		ran := false

		engine.Start("owner", NewTask("t").
			WaitUntil(func() bool { return ready }).
			Do(func() { ran = true }))

		engine.Advance(0.016)
		engine.Advance(0.016)
		Expect(ran).To(BeFalse())

		ready = true
		engine.Advance(0.016)
		Expect(ran).To(BeTrue())
	})

	It("should wait for host seconds", func() {
		ran := false

		engine.Start("owner", NewTask("t").
			WaitSeconds(1).
			Do(func() { ran = true }))

		for i := 0; i < 9; i++ {
			engine.Advance(0.1)
		}
		Expect(ran).To(BeFalse())

		engine.Advance(0.1)
		engine.Advance(0.1)
		Expect(ran).To(BeTrue())
	})

	It("should await a child task", func() {
		order := []string{}

		child := NewTask("child").
			WaitFrames(2).
			Do(func() { order = append(order, "child") })

		engine.Start("owner", NewTask("parent").
			Await(func() *Task { return child }).
			Do(func() { order = append(order, "parent") }))

		Expect(child.Owner()).To(Equal(Owner("owner")))

		engine.Advance(0.016)
		engine.Advance(0.016)
		engine.Advance(0.016)

		Expect(order).To(Equal([]string{"child", "parent"}))
	})

	It("should skip a nil await", func() {
		ran := false

		engine.Start("owner", NewTask("t").
			Await(func() *Task { return nil }).
			Do(func() { ran = true }))

		Expect(ran).To(BeTrue())
	})

	It("should stop all tasks of an owner", func() {
		ran := false

		a := engine.Start("a", NewTask("t1").WaitFrames(1).
			Do(func() { ran = true }))
		b := engine.Start("b", NewTask("t2").WaitFrames(5))

		Expect(engine.StopAll("a")).To(Equal(1))

		engine.Advance(0.016)

		Expect(ran).To(BeFalse())
		Expect(a.Stopped()).To(BeTrue())
		Expect(b.Stopped()).To(BeFalse())
		Expect(engine.Running("b")).To(Equal(1))
	})

	It("should not resume a stopped sleeping task", func() {
		ran := false

		task := engine.Start("a", NewTask("t").WaitSeconds(0.05).
			Do(func() { ran = true }))
		engine.StopAll("a")

		engine.Advance(0.1)

		Expect(ran).To(BeFalse())
		Expect(task.Done()).To(BeFalse())
	})

	It("should stop a panicking task and keep going", func() {
		core, logs := observer.New(zapcore.ErrorLevel)
		engine = NewEngine(zap.New(core))

		task := engine.Start("a", NewTask("t").
			WaitFrames(1).
			Do(func() { panic("boom") }))

		Expect(func() { engine.Advance(0.016) }).NotTo(Panic())
		Expect(task.Stopped()).To(BeTrue())
		Expect(logs.FilterMessage("continuation panicked").Len()).To(Equal(1))
	})

	It("should run posted commands before tasks", func() {
		order := []string{}

		engine.Start("a", NewTask("t").WaitFrames(1).
			Do(func() { order = append(order, "task") }))
		engine.Post(func() { order = append(order, "posted") })

		engine.Advance(0.016)

		Expect(order).To(Equal([]string{"posted", "task"}))
	})

	It("should tick tickers every frame", func() {
		ticker := NewMockTicker(mockCtrl)
		ticker.EXPECT().Tick().Return(true).Times(2)

		engine.RegisterTicker(ticker)
		engine.Advance(0.016)
		engine.Advance(0.016)
		engine.UnregisterTicker(ticker)
		engine.Advance(0.016)
	})

	It("should deliver scheduled events in time order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)

		evt1.EXPECT().Time().Return(VTimeInSec(0.2)).AnyTimes()
		evt1.EXPECT().Handler().Return(handler).AnyTimes()
		evt2.EXPECT().Time().Return(VTimeInSec(0.1)).AnyTimes()
		evt2.EXPECT().Handler().Return(handler).AnyTimes()

		first := handler.EXPECT().Handle(evt2).Return(nil)
		handler.EXPECT().Handle(evt1).Return(nil).After(first)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		engine.Advance(0.3)
	})

	It("should panic when scheduling in the past", func() {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(VTimeInSec(0)).AnyTimes()

		engine.Advance(1)

		Expect(func() { engine.Schedule(evt) }).To(Panic())
	})

	It("should invoke frame hooks around the frame", func() {
		positions := []*hooking.HookPos{}
		engine.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		engine.Start("a", NewTask("t").WaitFrames(1))
		engine.Advance(0.016)

		Expect(positions).To(Equal([]*hooking.HookPos{
			HookPosBeforeFrame, HookPosTaskEnd, HookPosAfterFrame,
		}))
	})

	It("should run posted commands from other goroutines", func() {
		done := make(chan error)

		go func() {
			done <- engine.PostAndWait(context.Background(), func() {})
		}()

		Eventually(func() bool {
			engine.Advance(0.016)

			select {
			case err := <-done:
				return err == nil
			default:
				return false
			}
		}, time.Second, time.Millisecond).Should(BeTrue())
	})

	It("should drop a posted closure once the waiter gives up", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ran := false
		err := engine.PostAndWait(ctx, func() { ran = true })

		Expect(err).To(MatchError(context.Canceled))

		engine.Advance(0.016)

		Expect(ran).To(BeFalse())
	})
})

var _ = Describe("TaskLogger", func() {
	It("should log ended tasks", func() {
		core, logs := observer.New(zapcore.DebugLevel)
		engine := NewEngine(zap.NewNop())
		engine.AcceptHook(NewTaskLogger(zap.New(core)))

		engine.Start("a", NewTask("quick").Do(func() {}))
		engine.Start("a", NewTask("slow").WaitFrames(3))
		engine.StopAll("a")

		entries := logs.FilterMessage("continuation ended").All()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].ContextMap()["task"]).To(Equal("quick"))
		Expect(entries[1].ContextMap()["stopped"]).To(Equal(true))
	})
})
