package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FeatureSource identifies where a product feature value was extracted from
type FeatureSource string

const (
	SourceTechnicalInfo FeatureSource = "technical_info"
	SourceFeatures      FeatureSource = "features"
	SourceBrandInfo     FeatureSource = "brand_info"
	SourceTitle         FeatureSource = "title"
)

// Precedence returns the reliability rank of a source. Higher wins on merge.
func (s FeatureSource) Precedence() int {
	switch s {
	case SourceTechnicalInfo:
		return 4
	case SourceFeatures:
		return 3
	case SourceBrandInfo:
		return 2
	case SourceTitle:
		return 1
	default:
		return 0
	}
}

// ValueKind tags the FeatureValue variant
type ValueKind int

const (
	// KindInvalid is the zero value and never produced by the extractors
	KindInvalid ValueKind = iota
	// KindScalar is a bare normalized value (requirement side)
	KindScalar
	// KindAnnotated is a normalized value with confidence and provenance (product side)
	KindAnnotated
)

// FeatureValue is a normalized scalar or short categorical token.
// It is either Scalar(value) or Annotated(value, confidence, source); callers
// switch on Kind() instead of inspecting the payload.
type FeatureValue struct {
	kind       ValueKind
	value      string
	confidence float64
	source     FeatureSource
}

// Scalar creates a bare feature value
func Scalar(value string) FeatureValue {
	return FeatureValue{kind: KindScalar, value: value}
}

// Annotated creates a feature value carrying extraction confidence and source
func Annotated(value string, confidence float64, source FeatureSource) FeatureValue {
	return FeatureValue{kind: KindAnnotated, value: value, confidence: confidence, source: source}
}

// Kind returns the variant tag
func (v FeatureValue) Kind() ValueKind { return v.kind }

// Value returns the normalized value for both variants
func (v FeatureValue) Value() string { return v.value }

// Confidence returns the extraction confidence. Scalars are fully trusted.
func (v FeatureValue) Confidence() float64 {
	if v.kind == KindAnnotated {
		return v.confidence
	}
	return 1.0
}

// Source returns the provenance of an annotated value, empty for scalars
func (v FeatureValue) Source() FeatureSource {
	if v.kind == KindAnnotated {
		return v.source
	}
	return ""
}

// IsValid reports whether the value was produced through a constructor
func (v FeatureValue) IsValid() bool {
	return v.kind == KindScalar || v.kind == KindAnnotated
}

type annotatedJSON struct {
	Value      json.RawMessage `json:"value"`
	Confidence float64         `json:"confidence,omitempty"`
	Source     FeatureSource   `json:"source,omitempty"`
}

// MarshalJSON encodes scalars as plain strings and annotated values as objects
func (v FeatureValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindAnnotated:
		raw, err := json.Marshal(v.value)
		if err != nil {
			return nil, err
		}
		return json.Marshal(annotatedJSON{Value: raw, Confidence: v.confidence, Source: v.source})
	case KindScalar:
		return json.Marshal(v.value)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a scalar (string, number, bool) or an object with a
// scalar "value" field. Anything else is a contract violation by the sender.
func (v *FeatureValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return NewContractViolationError("feature_value", "value", "null feature value")
	}

	if data[0] == '{' {
		var obj annotatedJSON
		if err := json.Unmarshal(data, &obj); err != nil {
			return NewContractViolationError("feature_value", "value", err.Error())
		}
		scalar, err := decodeScalar(obj.Value)
		if err != nil {
			return err
		}
		if obj.Source == "" && obj.Confidence == 0 {
			*v = Scalar(scalar)
			return nil
		}
		*v = Annotated(scalar, obj.Confidence, obj.Source)
		return nil
	}

	scalar, err := decodeScalar(data)
	if err != nil {
		return err
	}
	*v = Scalar(scalar)
	return nil
}

func decodeScalar(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", NewContractViolationError("feature_value", "value", "missing value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", NewContractViolationError("feature_value", "value", err.Error())
		}
		return s, nil
	case '{', '[':
		return "", NewContractViolationError("feature_value", "value",
			"expected scalar, got complex structure "+string(data[:1]))
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return "", NewContractViolationError("feature_value", "value", err.Error())
		}
		return strconv.FormatBool(b), nil
	case 'n':
		return "", NewContractViolationError("feature_value", "value", "null feature value")
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return "", NewContractViolationError("feature_value", "value", err.Error())
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
}
