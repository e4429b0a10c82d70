// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvokeHook provides observability callpoints around every call into the
// foreign session. Implementations must tolerate being called from
// whichever goroutine holds the session.
type InvokeHook interface {
	OnInvokeStart(ctx context.Context, info InvokeInfo) (context.Context, HookToken)
	OnInvokeEnd(ctx context.Context, token HookToken, info InvokeInfo, err error)
}

// HookToken is an opaque value returned by OnInvokeStart and passed back
// to OnInvokeEnd. Only meaningful to the InvokeHook that created it.
type HookToken interface{}

// InvokeInfo carries call metadata passed to hooks.
type InvokeInfo struct {
	Hook       string // foreign hook name
	TargetType string // predictor target type
	CallID     string // unique id for this call
	StartTime  time.Time
}

func newInvokeInfo(hook, targetType string) InvokeInfo {
	return InvokeInfo{
		Hook:       hook,
		TargetType: targetType,
		CallID:     uuid.NewString(),
		StartTime:  time.Now(),
	}
}
