// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log/slog"
)

// TargetType selects the prediction mode the foreign hooks are configured
// for.
type TargetType string

const (
	TargetRegression   TargetType = "regression"
	TargetBinary       TargetType = "binary"
	TargetMulticlass   TargetType = "multiclass"
	TargetAnomaly      TargetType = "anomaly"
	TargetUnstructured TargetType = "unstructured"
	TargetTransform    TargetType = "transform"
)

// Params configures a predictor. The serving framework that populates it
// is outside this package.
type Params struct {
	// CodeDir is the model code directory; its custom.gos (when present)
	// is sourced into the session during init.
	CodeDir    string
	TargetType TargetType
	// Class-label context for classification targets. Absent labels are
	// passed to the foreign side as null.
	PositiveClassLabel string
	NegativeClassLabel string
	ClassLabels        []string
}

// UnstructuredResult is the outcome of an unstructured predict call.
type UnstructuredResult struct {
	// Payload is []byte, string or nil, following the scalar conversion
	// rules.
	Payload any
	// Metadata is nil when the hook returned no metadata element.
	Metadata map[string]any
}

// TransformResult is the outcome of a transform call. Exactly one of
// Features and Sparse is set: Sparse when the foreign side used the
// triplet wire format, Features otherwise.
type TransformResult struct {
	Features *Frame
	Sparse   *SparseMatrix
	// Target is nil when the transform ran without a target payload.
	Target *Frame
}

// Predictor is the host-facing facade over one foreign session. Configure
// must complete before any request method; request methods are re-entrant
// and serialize on the session internally.
type Predictor struct {
	rt          *Runtime
	hook        InvokeHook
	targetType  TargetType
	model       Value
	posLabel    Value
	negLabel    Value
	classLabels Value
	configured  bool
}

// Option customizes a predictor before configuration.
type Option func(*Predictor)

// WithInvokeHook installs an observability hook around every foreign
// call.
func WithInvokeHook(h InvokeHook) Option {
	return func(p *Predictor) { p.hook = h }
}

// NewPredictor returns an unconfigured predictor.
func NewPredictor(opts ...Option) *Predictor {
	p := &Predictor{
		posLabel:    Null(),
		negLabel:    Null(),
		classLabels: Null(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Configure brings up the foreign session, verifies required hooks, and
// loads the model. Any failure leaves the predictor unusable; it never
// silently continues with a half-configured session.
func (p *Predictor) Configure(ctx context.Context, params Params) error {
	if p.configured {
		return newError(KindConfiguration, "predictor is already configured")
	}
	if params.CodeDir == "" {
		return newError(KindConfiguration, "code directory is required")
	}
	if params.TargetType == "" {
		return newError(KindConfiguration, "target type is required")
	}

	p.targetType = params.TargetType
	if params.PositiveClassLabel != "" {
		p.posLabel = Character(params.PositiveClassLabel)
	}
	if params.NegativeClassLabel != "" {
		p.negLabel = Character(params.NegativeClassLabel)
	}
	if params.ClassLabels != nil {
		p.classLabels = CharacterVector(params.ClassLabels)
	}

	rt, err := NewRuntime()
	if err != nil {
		return err
	}
	if err := rt.Initialize(params.CodeDir, string(params.TargetType)); err != nil {
		rt.Close()
		return err
	}

	if params.TargetType == TargetUnstructured {
		for _, h := range []string{HookLoadModel, HookScoreUnstructured} {
			if !rt.HookExists(h) {
				rt.Close()
				return newError(KindConfiguration,
					"in %q mode hook %q must be provided", TargetUnstructured, h)
			}
		}
	}

	p.rt = rt
	model, err := p.invoke(ctx, HookLoadSerializedModel, Args{
		KeyCodeDir:    Character(params.CodeDir),
		KeyTargetType: Character(string(params.TargetType)),
	})
	if err != nil {
		rt.Close()
		p.rt = nil
		return err
	}
	p.model = model
	p.configured = true
	slog.Info("predictor configured", "target_type", params.TargetType, "code_dir", params.CodeDir)
	return nil
}

// PredictStructured scores a structured payload and returns the
// predictions as a frame. A bare numeric result is normalized into a
// single-column frame under PredictionColumn.
func (p *Predictor) PredictStructured(ctx context.Context, binaryData []byte, mimetype string) (*Frame, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	res, err := p.invoke(ctx, HookOuterPredict, Args{
		KeyTargetType:    Character(string(p.targetType)),
		KeyBinaryData:    Raw(binaryData),
		KeyMimeType:      characterOrNull(mimetype),
		KeyModel:         p.model,
		KeyPositiveLabel: p.posLabel,
		KeyNegativeLabel: p.negLabel,
		KeyClassLabels:   p.classLabels,
	})
	if err != nil {
		return nil, err
	}
	switch res.Kind() {
	case KindTable:
		return res.Table(), nil
	case KindNumeric:
		return singleColumnFrame(PredictionColumn, res.Floats())
	default:
		return nil, newError(KindInvalidPredictionShape,
			"expected predictions as a table, got %s. "+
				"Are you trying to run binary classification without class labels provided?",
			res.Kind())
	}
}

// PredictUnstructured passes an arbitrary payload to the unstructured
// scoring hook. Text payloads cross as a one-element character vector,
// byte payloads as a raw vector. Extra parameters with nil values are
// dropped before the call so the hook never sees placeholders for omitted
// arguments.
func (p *Predictor) PredictUnstructured(ctx context.Context, data any, query map[string]any, extra map[string]any) (*UnstructuredResult, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	args := Args{KeyModel: p.model}
	switch d := data.(type) {
	case nil:
		args[KeyData] = Null()
	case []byte:
		args[KeyData] = Raw(d)
	case string:
		args[KeyData] = Character(d)
	default:
		return nil, newError(KindUnsupportedValue,
			"unstructured data must be bytes, text or nil, got %T", data)
	}
	if query != nil {
		qv, err := ToForeign(query)
		if err != nil {
			return nil, err
		}
		args[KeyQuery] = qv
	}
	for k, v := range extra {
		if v == nil {
			continue
		}
		fv, err := ToForeign(v)
		if err != nil {
			return nil, err
		}
		args[k] = fv
	}

	res, err := p.invoke(ctx, HookPredictUnstructured, args)
	if err != nil {
		return nil, err
	}
	if res.Kind() != KindList || res.List().Len() != 2 {
		return nil, newError(KindUnexpectedResult,
			"expected a two-element list from %s, got %s", HookPredictUnstructured, describeResult(res))
	}
	payload, err := fromForeignScalar(res.List().At(0))
	if err != nil {
		return nil, err
	}
	out := &UnstructuredResult{Payload: payload}
	if meta := res.List().At(1); !meta.IsNull() {
		if meta.Kind() != KindList {
			return nil, newError(KindUnexpectedResult,
				"expected unstructured metadata as a list, got %s", meta.Kind())
		}
		out.Metadata, err = listToMap(meta.List())
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Transform runs the transform hook over a features payload and an
// optional target payload. When the foreign side answers with the sparse
// triplet wire format, the features come back as a reconstructed sparse
// matrix instead of a dense frame.
func (p *Predictor) Transform(ctx context.Context, binaryData, targetBinaryData []byte, mimetype string) (*TransformResult, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	args := Args{
		KeyBinaryData:  Raw(binaryData),
		KeyMimeType:    characterOrNull(mimetype),
		KeyTransformer: p.model,
	}
	if targetBinaryData != nil {
		args[KeyTargetBinaryData] = Raw(targetBinaryData)
	} else {
		args[KeyTargetBinaryData] = Null()
	}

	res, err := p.invoke(ctx, HookOuterTransform, args)
	if err != nil {
		return nil, err
	}
	if res.Kind() != KindList || res.List().Len() != 2 {
		return nil, newError(KindUnexpectedResult,
			"expected transform to return a two-element list containing X and y, got %s",
			describeResult(res))
	}

	xv := res.List().At(0)
	if xv.Kind() != KindTable {
		return nil, newError(KindInvalidTransformOutput,
			"expected transform output as a table, got %s", xv.Kind())
	}
	out := &TransformResult{}
	features := xv.Table()
	if isSparseTriplet(features) {
		sm, err := decodeSparseFrame(features)
		if err != nil {
			return nil, err
		}
		out.Sparse = sm
	} else {
		out.Features = features
	}

	switch yv := res.List().At(1); yv.Kind() {
	case KindNull:
		// transform without a target
	case KindTable:
		out.Target = yv.Table()
	case KindNumeric:
		t, err := singleColumnFrame(TargetColumn, yv.Floats())
		if err != nil {
			return nil, err
		}
		out.Target = t
	default:
		return nil, newError(KindInvalidTransformOutput,
			"expected transform target as a table, vector or null, got %s", yv.Kind())
	}
	return out, nil
}

// HasReadInputDataHook reports whether the model author provided their
// own payload reader.
func (p *Predictor) HasReadInputDataHook(ctx context.Context) (bool, error) {
	if err := p.ready(); err != nil {
		return false, err
	}
	res, err := p.invoke(ctx, HookHasReadInputDataHook, Args{})
	if err != nil {
		return false, err
	}
	if res.Kind() != KindLogical {
		return false, newError(KindUnexpectedResult,
			"expected a logical from %s, got %s", HookHasReadInputDataHook, res.Kind())
	}
	return res.Bool(), nil
}

// SupportedPayloadFormats lists the structured payload encodings the
// bridge decodes.
func (p *Predictor) SupportedPayloadFormats() []PayloadFormat {
	return []PayloadFormat{FormatCSV, FormatMTX}
}

// Close tears down the foreign session. The predictor is unusable
// afterwards.
func (p *Predictor) Close() error {
	p.configured = false
	if p.rt != nil {
		return p.rt.Close()
	}
	return nil
}

func (p *Predictor) ready() error {
	if !p.configured {
		return newError(KindConfiguration, "predictor is not configured")
	}
	return nil
}

// invoke routes a foreign call through the observability hook. The
// context feeds tracing only: a foreign call cannot be cancelled once
// started.
func (p *Predictor) invoke(ctx context.Context, name string, args Args) (Value, error) {
	if p.hook == nil {
		return p.rt.Invoke(name, args)
	}
	info := newInvokeInfo(name, string(p.targetType))
	ctx, token := p.hook.OnInvokeStart(ctx, info)
	v, err := p.rt.Invoke(name, args)
	p.hook.OnInvokeEnd(ctx, token, info, err)
	return v, err
}

func characterOrNull(s string) Value {
	if s == "" {
		return Null()
	}
	return Character(s)
}

// describeResult names a result shape for error messages.
func describeResult(v Value) string {
	if v.Kind() == KindList {
		return fmt.Sprintf("list of length %d", v.List().Len())
	}
	return v.Kind().String()
}
