package dbtype

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/uim-go/dbtype/internal/anynil"
)

// InputKind identifies the shape of an Input.
type InputKind uint8

const (
	InputAbsent InputKind = iota
	InputBool
	InputTime
	InputInt
	InputText
	InputFields
)

func (k InputKind) String() string {
	switch k {
	case InputAbsent:
		return "absent"
	case InputBool:
		return "bool"
	case InputTime:
		return "time"
	case InputInt:
		return "int"
	case InputText:
		return "text"
	case InputFields:
		return "fields"
	default:
		return "invalid"
	}
}

// Input is loosely typed external data, such as a submitted form field, waiting to be
// marshalled by a Converter. The zero value is absent input.
type Input struct {
	kind   InputKind
	b      bool
	t      time.Time
	i      int64
	s      string
	fields map[string]string
}

// Absent returns input that carries no value.
func Absent() Input {
	return Input{}
}

func Bool(b bool) Input {
	return Input{kind: InputBool, b: b}
}

func Time(t time.Time) Input {
	return Input{kind: InputTime, t: t}
}

func Int(i int64) Input {
	return Input{kind: InputInt, i: i}
}

func Text(s string) Input {
	return Input{kind: InputText, s: s}
}

// Fields returns structured input such as the separate year, month and day inputs of a
// form. Values are kept in their textual form. Keys with nil values are left out, so
// they count as unset.
func Fields(m map[string]any) Input {
	fields := make(map[string]string, len(m))
	for k, v := range m {
		if anynil.Is(v) {
			continue
		}
		fields[k] = fieldText(v)
	}
	return Input{kind: InputFields, fields: fields}
}

func fieldText(v any) string {
	switch v := anynil.Deref(v).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return ""
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// InputOf classifies a dynamically typed Go value. Typed nils are absent, integer kinds
// are Int, strings and byte slices are Text, string keyed maps are Fields.
func InputOf(v any) (Input, error) {
	switch v := anynil.Deref(v).(type) {
	case nil:
		return Absent(), nil
	case Input:
		return v, nil
	case bool:
		return Bool(v), nil
	case time.Time:
		return Time(v), nil
	case string:
		return Text(v), nil
	case []byte:
		return Text(string(v)), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return uintInput(uint64(v))
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return uintInput(v)
	case map[string]string:
		fields := make(map[string]any, len(v))
		for k, s := range v {
			fields[k] = s
		}
		return Fields(fields), nil
	case map[string]any:
		return Fields(v), nil
	case float32:
		return floatInput(float64(v))
	case float64:
		return floatInput(v)
	}

	return Input{}, conversionError("", v, ErrInvalidInput)
}

// floatInput makes integral floats Int, which is how JSON decodes numbers, and other
// finite floats Text.
func floatInput(v float64) (Input, error) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return Input{}, conversionError("", v, ErrInvalidInput)
	case v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64:
		return Int(int64(v)), nil
	}
	return Text(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

func uintInput(v uint64) (Input, error) {
	if v > math.MaxInt64 {
		return Input{}, conversionError("", v, fmt.Errorf("%d is greater than maximum value for int64", v))
	}
	return Int(int64(v)), nil
}

func (in Input) Kind() InputKind {
	return in.kind
}

func (in Input) Bool() bool {
	return in.b
}

func (in Input) Time() time.Time {
	return in.t
}

func (in Input) Int() int64 {
	return in.i
}

func (in Input) Text() string {
	return in.s
}

// Fields returns a copy of the fields of an InputFields input.
func (in Input) Fields() map[string]string {
	if in.fields == nil {
		return nil
	}
	fields := make(map[string]string, len(in.fields))
	for k, v := range in.fields {
		fields[k] = v
	}
	return fields
}

// Value returns the input as a plain Go value.
func (in Input) Value() any {
	switch in.kind {
	case InputBool:
		return in.b
	case InputTime:
		return in.t
	case InputInt:
		return in.i
	case InputText:
		return in.s
	case InputFields:
		return in.Fields()
	default:
		return nil
	}
}

func (in Input) String() string {
	if in.kind == InputAbsent {
		return "absent"
	}
	return fmt.Sprintf("%s(%v)", in.kind, in.Value())
}
