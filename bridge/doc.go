// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

// Package bridge is a bidirectional data-and-control bridge between a host
// prediction process and model code running in an embedded script runtime.
// The host hands the bridge typed payloads (tabular bytes, raw buffers,
// text, key/value maps); the bridge converts them into the runtime's value
// representation, invokes the model-author hooks, and converts the results
// back into host-native types with typed errors carrying the runtime's own
// diagnostic output.
//
// # Components
//
// [Value] is the tagged foreign-value variant: every value crossing the
// boundary is classified exactly once (null, raw bytes, character vector,
// logical, numeric vector, named list, table, opaque) and matched
// exhaustively from then on. [ToForeign] and [FromForeign] implement the
// host side of the codec.
//
// [Runtime] owns one interpreter session per predictor: it sources the
// bridge's two support scripts, maintains the hook registry the scripts
// bind their entry points into, and serializes every call into the session.
// The session is strictly single-threaded; a call that never returns will
// hang its caller, and any timeout policy belongs to the serving layer.
//
// [Predictor] is the host-facing facade. [Predictor.Configure] brings the
// runtime up and loads the model; [Predictor.PredictStructured],
// [Predictor.PredictUnstructured] and [Predictor.Transform] service
// requests, applying the mode-specific result shaping: bare numeric
// prediction arrays become a single-column frame under [PredictionColumn],
// and transform outputs using the sparse triplet wire format are rebuilt
// into a [SparseMatrix].
//
// # Hook contract
//
// Model code is a Go script (conventionally custom.gos in the code
// directory) evaluated statement by statement into the session. Scripts
// bind functions at the top level through the injected hookenv package:
//
//	import "hookenv"
//
//	hookenv.RegisterHook("score", func(args hookenv.Args) (hookenv.Value, error) {
//		data := args["data"].Table()
//		// ...
//	})
//
// A hook signals a fault by returning an error or panicking; either way
// the fault is captured, annotated with the session's diagnostic output,
// and surfaced to the host as a [BridgeError] of kind
// [KindForeignExecution]. Faults are never retried at this layer.
package bridge
