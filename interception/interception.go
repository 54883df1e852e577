// Package interception attaches the extension's before and after hooks to
// host methods: the crit override, the bind duration scaling and the
// equipment watch.
package interception

import (
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/sim/hooking"
	"go.uber.org/zap"
)

// A MethodHook is a hook bound to the host methods it intercepts.
type MethodHook interface {
	hooking.Hook
	Methods() []host.MethodID
}

// Install registers every hook on its methods.
func Install(i host.Interceptor, hooks ...MethodHook) error {
	for _, h := range hooks {
		for _, m := range h.Methods() {
			if err := i.Intercept(m, h); err != nil {
				return err
			}
		}
	}

	return nil
}

// guard keeps a hook failure from reaching the host call stack.
func guard(log *zap.Logger, hook string) {
	if r := recover(); r != nil {
		log.Error("hook panicked",
			zap.String("hook", hook), zap.Any("panic", r))
	}
}
