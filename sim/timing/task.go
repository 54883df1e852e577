package timing

// Owner groups continuations so that they can be stopped together.
type Owner string

type stepKind int

const (
	stepDo stepKind = iota
	stepWaitUntil
	stepWaitFrames
	stepWaitSeconds
	stepAwait
)

type step struct {
	kind    stepKind
	do      func()
	until   func() bool
	frames  int
	seconds VTimeInSec
	await   func() *Task
}

// A Task is a cooperative continuation. It is an explicit list of steps that
// the engine walks on the host tick. A task suspends at wait steps and resumes
// on a later frame, always on the frame loop.
type Task struct {
	name  string
	owner Owner
	steps []step

	pc           int
	armed        bool
	framesLeft   int
	sleeping     bool
	awaiting     *Task
	lastRunFrame uint64
	started      bool
	done         bool
	stopped      bool
}

// NewTask creates an empty task. Steps are appended with the builder methods.
func NewTask(name string) *Task {
	return &Task{name: name}
}

// Do appends a step that runs fn.
func (t *Task) Do(fn func()) *Task {
	t.steps = append(t.steps, step{kind: stepDo, do: fn})
	return t
}

// WaitUntil appends a step that suspends until pred returns true. The
// predicate is checked once per frame.
func (t *Task) WaitUntil(pred func() bool) *Task {
	t.steps = append(t.steps, step{kind: stepWaitUntil, until: pred})
	return t
}

// WaitFrames appends a step that suspends for n frames.
func (t *Task) WaitFrames(n int) *Task {
	t.steps = append(t.steps, step{kind: stepWaitFrames, frames: n})
	return t
}

// WaitSeconds appends a step that suspends until s seconds of host time have
// passed.
func (t *Task) WaitSeconds(s VTimeInSec) *Task {
	t.steps = append(t.steps, step{kind: stepWaitSeconds, seconds: s})
	return t
}

// Await appends a step that starts the task returned by fn, under the same
// owner, and suspends until it finishes. A nil task is skipped.
func (t *Task) Await(fn func() *Task) *Task {
	t.steps = append(t.steps, step{kind: stepAwait, await: fn})
	return t
}

// Name returns the name of the task.
func (t *Task) Name() string {
	return t.name
}

// Owner returns the owner the task was started under.
func (t *Task) Owner() Owner {
	return t.owner
}

// Done returns true if all the steps have run.
func (t *Task) Done() bool {
	return t.done
}

// Stopped returns true if the task was cancelled before finishing.
func (t *Task) Stopped() bool {
	return t.stopped
}

// Finished returns true if the task will never run again.
func (t *Task) Finished() bool {
	return t.done || t.stopped
}

// Handle resumes a task parked by WaitSeconds.
func (t *Task) Handle(e Event) error {
	if _, ok := e.(wakeEvent); !ok {
		return nil
	}

	if t.stopped || !t.sleeping {
		return nil
	}

	t.sleeping = false
	t.armed = false
	t.pc++

	return nil
}

// run walks the steps until one blocks. It reports whether the task finished.
func (t *Task) run(e *Engine) bool {
	t.lastRunFrame = e.frame

	for t.pc < len(t.steps) {
		if t.stopped {
			return true
		}

		if !t.runStep(e, &t.steps[t.pc]) {
			return false
		}

		t.armed = false
		t.pc++
	}

	t.done = true

	return true
}

// runStep returns true if the step completed.
func (t *Task) runStep(e *Engine, s *step) bool {
	switch s.kind {
	case stepDo:
		s.do()
		return true
	case stepWaitUntil:
		return s.until()
	case stepWaitFrames:
		return t.countFrames(s.frames)
	case stepWaitSeconds:
		return t.sleep(e, s.seconds)
	case stepAwait:
		return t.awaitChild(e, s.await)
	default:
		panic("unknown step kind")
	}
}

func (t *Task) countFrames(n int) bool {
	if !t.armed {
		t.armed = true
		t.framesLeft = n

		return n <= 0
	}

	t.framesLeft--

	return t.framesLeft <= 0
}

func (t *Task) sleep(e *Engine, s VTimeInSec) bool {
	if s <= 0 {
		return true
	}

	if !t.armed {
		t.armed = true
		t.sleeping = true
		e.Schedule(wakeEvent{NewEventBase(e.now+s, t)})
	}

	return false
}

func (t *Task) awaitChild(e *Engine, fn func() *Task) bool {
	if !t.armed {
		t.armed = true
		t.awaiting = fn()

		if t.awaiting == nil {
			return true
		}

		if !t.awaiting.started {
			e.Start(t.owner, t.awaiting)
		}
	}

	if t.awaiting.Finished() {
		t.awaiting = nil
		return true
	}

	return false
}
