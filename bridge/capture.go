// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/traefik/yaegi/interp"
)

// capture is a scoped interception of the session's fault channel. Arming
// resets the diagnostic buffer so a fault is annotated with only its own
// call's output; disarming runs on every exit path of the call that armed
// it, so no interception state survives across calls.
type capture struct {
	rt    *Runtime
	armed bool
}

// armCapture opens an interception scope. One scope per session call; the
// invoke mutex guarantees no overlap.
func (r *Runtime) armCapture() *capture {
	r.stderr.Reset()
	r.intercepting = true
	return &capture{rt: r, armed: true}
}

func (c *capture) disarm() {
	if !c.armed {
		return
	}
	c.armed = false
	c.rt.intercepting = false
}

// call runs a hook under this interception scope. A returned error and a
// panic inside interpreted code are both converted into a
// ForeignExecutionError; neither is ever swallowed.
func (c *capture) call(hook string, fn HookFunc, args Args) (v Value, err error) {
	defer func() {
		if rv := recover(); rv != nil {
			v, err = Null(), c.fault(hook, rv)
		}
	}()
	v, callErr := fn(args)
	if callErr != nil {
		return Null(), c.fault(hook, callErr)
	}
	return v, nil
}

// eval sources script text under this interception scope.
func (c *capture) eval(scope, src string) error {
	if _, err := c.rt.interp.Eval(src); err != nil {
		return c.fault(scope, err)
	}
	return nil
}

// fault converts a captured foreign failure into a typed error carrying
// the session's diagnostic text verbatim, logging it before it
// propagates.
func (c *capture) fault(scope string, cause any) *BridgeError {
	var sb strings.Builder
	switch f := cause.(type) {
	case interp.Panic:
		fmt.Fprintln(&sb, f.Value)
		sb.Write(f.Stack)
	case *interp.Panic:
		fmt.Fprintln(&sb, f.Value)
		sb.Write(f.Stack)
	case error:
		sb.WriteString(f.Error())
	default:
		fmt.Fprint(&sb, f)
	}
	if diag := strings.TrimSpace(c.rt.stderr.String()); diag != "" {
		sb.WriteString("\n")
		sb.WriteString(diag)
	}
	traceback := strings.TrimSpace(sb.String())

	msg := fmt.Sprintf("%s raised: %s", scope, traceback)
	if traceback == "" {
		msg = fmt.Sprintf("%s raised a fault with no diagnostic output", scope)
	}
	slog.Error("foreign execution fault", "scope", scope, "err", msg)
	return &BridgeError{Kind: KindForeignExecution, Message: msg, Traceback: traceback}
}
