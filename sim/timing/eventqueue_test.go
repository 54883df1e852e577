package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueue", func() {
	var queue *EventQueueImpl

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop in time order", func() {
		h := NewTask("h")
		queue.Push(wakeEvent{NewEventBase(3, h)})
		queue.Push(wakeEvent{NewEventBase(1, h)})
		queue.Push(wakeEvent{NewEventBase(2, h)})

		Expect(queue.Len()).To(Equal(3))
		Expect(queue.Peek().Time()).To(Equal(VTimeInSec(1)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(1)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(2)))
		Expect(queue.Pop().Time()).To(Equal(VTimeInSec(3)))
	})

	It("should keep push order for equal times", func() {
		a := wakeEvent{NewEventBase(1, NewTask("a"))}
		b := wakeEvent{NewEventBase(1, NewTask("b"))}

		queue.Push(a)
		queue.Push(b)

		Expect(queue.Pop()).To(Equal(a))
		Expect(queue.Pop()).To(Equal(b))
	})
})
