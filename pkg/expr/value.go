// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
)

type undefined struct{}

// Undefined is returned for anything that cannot be resolved.
// It is distinct from nil, which is an explicit YAML null.
var Undefined interface{} = undefined{}

func IsUndefined(val interface{}) bool {
	_, ok := val.(undefined)
	return ok
}

// RenderedBool is a boolean produced by evaluation. It renders as
// True/False in output, unlike booleans read from the document.
type RenderedBool bool

func (b RenderedBool) String() string {
	if b {
		return "True"
	}
	return "False"
}

// Func is a callable value reachable through member access.
type Func func(args []interface{}) interface{}

var numericRegexp = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)

// LooksNumeric reports whether s reads as a plain integer or decimal.
func LooksNumeric(s string) bool {
	return numericRegexp.MatchString(s)
}

func ToBoolean(val interface{}) bool {
	switch typedVal := val.(type) {
	case nil, undefined:
		return false
	case bool:
		return typedVal
	case RenderedBool:
		return bool(typedVal)
	case int:
		return typedVal != 0
	case float64:
		return typedVal != 0 && !math.IsNaN(typedVal)
	case string:
		switch strings.ToLower(strings.TrimSpace(typedVal)) {
		case "true", "__true__":
			return true
		case "false", "__false__", "":
			return false
		}
		return true
	default:
		return true
	}
}

// ToNumber returns NaN when val has no numeric reading.
func ToNumber(val interface{}) float64 {
	switch typedVal := val.(type) {
	case nil:
		return 0
	case bool:
		if typedVal {
			return 1
		}
		return 0
	case RenderedBool:
		return ToNumber(bool(typedVal))
	case int:
		return float64(typedVal)
	case float64:
		return typedVal
	case string:
		trimmed := strings.TrimSpace(typedVal)
		if trimmed == "" {
			return 0
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// normalize maps operands onto bool, float64 or string for comparisons.
func normalize(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case nil, undefined:
		return ""
	case bool:
		return typedVal
	case RenderedBool:
		return bool(typedVal)
	case int:
		return float64(typedVal)
	case float64:
		return typedVal
	case string:
		trimmed := strings.TrimSpace(typedVal)
		switch strings.ToLower(trimmed) {
		case "true", "__true__":
			return true
		case "false", "__false__":
			return false
		}
		if LooksNumeric(trimmed) {
			if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return f
			}
		}
		return trimmed
	default:
		return Stringify(val)
	}
}

// CompareValues returns -1, 0 or 1 after normalizing both operands.
func CompareValues(a, b interface{}) int {
	return compare(normalize(a), normalize(b), false)
}

// CompareValuesFold is CompareValues with case-insensitive strings.
func CompareValuesFold(a, b interface{}) int {
	return compare(normalize(a), normalize(b), true)
}

func compare(a, b interface{}, fold bool) int {
	switch typedA := a.(type) {
	case float64:
		if typedB, ok := b.(float64); ok {
			return compareFloats(typedA, typedB)
		}
	case bool:
		if typedB, ok := b.(bool); ok {
			return compareFloats(ToNumber(typedA), ToNumber(typedB))
		}
	}
	aStr, bStr := Stringify(a), Stringify(b)
	if fold {
		aStr, bStr = strings.ToLower(aStr), strings.ToLower(bStr)
	}
	return strings.Compare(aStr, bStr)
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Stringify renders a value the way interpolation inserts it into text.
func Stringify(val interface{}) string {
	switch typedVal := val.(type) {
	case nil, undefined:
		return ""
	case string:
		return typedVal
	case bool:
		return strconv.FormatBool(typedVal)
	case RenderedBool:
		return typedVal.String()
	case int:
		return strconv.Itoa(typedVal)
	case float64:
		return FormatNumber(typedVal)
	case *orderedmap.Map, []interface{}:
		return ToJSON(val)
	case Func:
		return ""
	default:
		return ToJSON(val)
	}
}

// ToJSON encodes values keeping mapping key order.
func ToJSON(val interface{}) string {
	var buf bytes.Buffer
	writeJSON(&buf, val)
	return buf.String()
}

func writeJSON(buf *bytes.Buffer, val interface{}) {
	switch typedVal := val.(type) {
	case nil, undefined, Func:
		buf.WriteString("null")
	case RenderedBool:
		buf.WriteString(strconv.FormatBool(bool(typedVal)))
	case float64:
		if math.IsNaN(typedVal) || math.IsInf(typedVal, 0) {
			buf.WriteString("null")
			return
		}
		buf.WriteString(FormatNumber(typedVal))
	case *orderedmap.Map:
		buf.WriteByte('{')
		for i, item := range typedVal.Items() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, item.Key)
			buf.WriteByte(':')
			writeJSON(buf, item.Value)
		}
		buf.WriteByte('}')
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range typedVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(buf, item)
		}
		buf.WriteByte(']')
	default:
		var encoded bytes.Buffer
		enc := json.NewEncoder(&encoded)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(typedVal); err != nil {
			buf.WriteString("null")
			return
		}
		buf.Write(bytes.TrimSuffix(encoded.Bytes(), []byte("\n")))
	}
}
