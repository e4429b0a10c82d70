// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

// Entry-point hook names the bridge's support scripts bind into the
// session. These names are fixed by the wire contract with the serving
// framework.
const (
	HookInit                 = "init"
	HookLoadSerializedModel  = "load_serialized_model"
	HookOuterPredict         = "outer_predict"
	HookPredictUnstructured  = "predict_unstructured"
	HookOuterTransform       = "outer_transform"
	HookHasReadInputDataHook = "has_read_input_data_hook"
)

// Model-author hook names. The entry points above delegate to these; the
// facade checks the first two exist before servicing unstructured mode.
const (
	HookLoadModel         = "load_model"
	HookScoreUnstructured = "score_unstructured"
	HookScore             = "score"
	HookTransform         = "transform"
	HookReadInputData     = "read_input_data"
)

// Keyword-argument names used on calls into the foreign session.
const (
	KeyBinaryData       = "binary_data"
	KeyTargetBinaryData = "target_binary_data"
	KeyMimeType         = "mimetype"
	KeyModel            = "model"
	KeyTransformer      = "transformer"
	KeyPositiveLabel    = "positive_class_label"
	KeyNegativeLabel    = "negative_class_label"
	KeyClassLabels      = "class_labels"
	KeyData             = "data"
	KeyTarget           = "target"
	KeyQuery            = "query"
	KeyCodeDir          = "code_dir"
	KeyTargetType       = "target_type"
)

// PredictionColumn is the column name used when a bare numeric prediction
// array is normalized into a single-column frame. Regression-style hooks
// return one value per row with no column structure; this puts them in the
// same shape as classification outputs.
const PredictionColumn = "Predictions"

// TargetColumn is the column name used when a transform target comes back
// as a bare vector instead of a frame.
const TargetColumn = "y"
