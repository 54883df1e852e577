package hostsim

import (
	"fmt"

	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/hooking"
)

// Method holds the hooks of one intercepted method.
type Method struct {
	*hooking.HookableBase
	id host.MethodID
}

// Method returns the method id.
func (m *Method) Method() host.MethodID {
	return m.id
}

// Interceptor runs hooks around the host methods it knows.
type Interceptor struct {
	methods map[host.MethodID]*Method
}

// NewInterceptor creates an interceptor for every interceptable method.
func NewInterceptor() *Interceptor {
	i := &Interceptor{methods: make(map[host.MethodID]*Method)}

	for _, m := range []host.MethodID{
		host.MethodApplyDamageScaling,
		host.MethodBindCompleted,
		host.MethodSetEquippedCrest,
		host.MethodRefreshEquippedState,
		host.MethodSendEquippedChangedEvt,
	} {
		i.methods[m] = &Method{HookableBase: hooking.NewHookableBase(), id: m}
	}

	return i
}

// Intercept registers hook on method.
func (i *Interceptor) Intercept(method host.MethodID, hook hooking.Hook) error {
	h, ok := i.methods[method]
	if !ok {
		return fmt.Errorf("method %s cannot be intercepted", method)
	}

	h.AcceptHook(hook)

	return nil
}

// NumHooks returns the hooks registered on method.
func (i *Interceptor) NumHooks(method host.MethodID) int {
	return i.methods[method].NumHooks()
}

// Call runs the before hooks, body and after hooks of method.
func (i *Interceptor) Call(method host.MethodID, item, ret any, body func()) {
	h := i.methods[method]

	h.InvokeHook(hooking.HookCtx{Domain: h, Pos: host.HookPosBefore, Item: item})

	if body != nil {
		body()
	}

	h.InvokeHook(hooking.HookCtx{
		Domain: h,
		Pos:    host.HookPosAfter,
		Item:   item,
		Detail: ret,
	})
}
