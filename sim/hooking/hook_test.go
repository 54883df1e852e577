package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingHook struct {
	positions []*HookPos
}

func (h *countingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
}

var _ = Describe("HookableBase", func() {
	var (
		base   *HookableBase
		before = &HookPos{Name: "Before"}
		after  = &HookPos{Name: "After"}
	)

	BeforeEach(func() {
		base = NewHookableBase()
	})

	It("should invoke hooks in registration order", func() {
		order := []string{}
		base.AcceptHook(HookFunc(func(HookCtx) { order = append(order, "a") }))
		base.AcceptHook(HookFunc(func(HookCtx) { order = append(order, "b") }))

		base.InvokeHook(HookCtx{Domain: base, Pos: before})

		Expect(order).To(Equal([]string{"a", "b"}))
		Expect(base.NumHooks()).To(Equal(2))
	})

	It("should pass the position and item through", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		value := 3
		base.InvokeHook(HookCtx{Domain: base, Pos: before, Item: &value})
		base.InvokeHook(HookCtx{Domain: base, Pos: after, Item: &value})

		Expect(h.positions).To(Equal([]*HookPos{before, after}))
	})

	It("should let before-hooks rewrite arguments passed by pointer", func() {
		base.AcceptHook(HookFunc(func(ctx HookCtx) {
			*(ctx.Item.(*int)) *= 2
		}))

		value := 21
		base.InvokeHook(HookCtx{Domain: base, Pos: before, Item: &value})

		Expect(value).To(Equal(42))
	})

	It("should panic when the same hook is registered twice", func() {
		h := &countingHook{}
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})
})
