package reactive

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rebalance/sim/timing"
	"go.uber.org/zap"
)

var _ = Describe("Tracker", func() {
	var (
		enabled bool
		open    bool
		a, b, c float64
		fired   []string
		tracker *Tracker
	)

	record := func(id string, _, _ float64) {
		fired = append(fired, id)
	}

	BeforeEach(func() {
		enabled, open = true, true
		a, b, c = 1, 2, 3
		fired = nil

		tracker = NewTracker(func() bool { return enabled }, zap.NewNop())
		tracker.Track("a", func() float64 { return a })
		tracker.Track("b", func() float64 { return b })
		tracker.Track("c", func() float64 { return c },
			WithGate(func() bool { return open }))

		for _, id := range tracker.IDs() {
			tracker.On(id, record)
		}
	})

	It("should apply every parameter on the first sync", func() {
		Expect(tracker.Sync()).To(Equal(3))
		Expect(fired).To(Equal([]string{"a", "b", "c"}))
	})

	It("should fire only the changed parameter", func() {
		tracker.Sync()
		fired = nil

		a = 5

		Expect(tracker.Sync()).To(Equal(1))
		Expect(fired).To(Equal([]string{"a"}))
	})

	It("should pass the old and new values", func() {
		var old, value float64
		tracker.On("b", func(_ string, o, v float64) { old, value = o, v })
		tracker.Sync()
		b = 7

		tracker.Sync()

		Expect(old).To(Equal(2.0))
		Expect(value).To(Equal(7.0))
	})

	It("should not fire when nothing changed", func() {
		tracker.Sync()
		fired = nil

		Expect(tracker.Sync()).To(Equal(0))
		Expect(fired).To(BeEmpty())
	})

	It("should do nothing while disabled", func() {
		enabled = false

		Expect(tracker.Sync()).To(Equal(0))
		snap, ok := tracker.Snapshot("a")
		Expect(ok).To(BeTrue())
		Expect(snap).To(Equal(Unapplied))
	})

	It("should keep gated parameters stale until the gate opens", func() {
		tracker.Sync()
		fired = nil
		open = false
		c = 9

		tracker.Sync()
		Expect(fired).To(BeEmpty())

		open = true
		tracker.Sync()
		Expect(fired).To(Equal([]string{"c"}))
	})

	It("should fire every open handler on force", func() {
		tracker.Sync()
		fired = nil

		Expect(tracker.ForceAll("menu")).To(Equal(3))
		Expect(fired).To(Equal([]string{"a", "b", "c"}))
	})

	It("should respect gates on force", func() {
		tracker.Sync()
		fired = nil
		open = false

		tracker.ForceAll("equipment")

		Expect(fired).To(Equal([]string{"a", "b"}))
		snap, _ := tracker.Snapshot("c")
		Expect(snap).To(Equal(Unapplied))
	})

	It("should survive a panicking handler", func() {
		tracker.On("a", func(string, float64, float64) { panic("boom") })

		Expect(func() { tracker.Sync() }).NotTo(Panic())
		Expect(fired).To(ContainElement("b"))
	})

	It("should reject duplicated parameters", func() {
		Expect(func() {
			tracker.Track("a", func() float64 { return 0 })
		}).To(Panic())
	})

	It("should run as an engine ticker", func() {
		engine := timing.NewEngine(zap.NewNop())
		engine.RegisterTicker(tracker)

		engine.Advance(0.016)
		Expect(fired).To(HaveLen(3))

		a = 4
		engine.Advance(0.016)
		Expect(fired).To(HaveLen(4))
	})
})

var _ = Describe("Tracker without gates", func() {
	It("should forget without firing", func() {
		fired := 0
		t := NewTracker(nil, zap.NewNop())
		t.Track("a", func() float64 { return 1 })
		t.On("a", func(string, float64, float64) { fired++ })
		t.Sync()

		t.Forget()

		Expect(fired).To(Equal(1))
		snap, _ := t.Snapshot("a")
		Expect(snap).To(Equal(Unapplied))
		Expect(t.Sync()).To(Equal(1))
		Expect(fired).To(Equal(2))
	})
})
