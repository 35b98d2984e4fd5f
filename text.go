package dbtype

import (
	"fmt"
	"strconv"
	"time"

	"github.com/uim-go/dbtype/internal/anynil"
)

// TextType converts values to and from strings.
type TextType struct {
	Base
}

func NewTextType(name string) *TextType {
	return &TextType{Base: NewBase(name, "")}
}

func (tt *TextType) ToStorage(value any, d Driver) (any, error) {
	return tt.text(value)
}

func (tt *TextType) ToApplication(value any, d Driver) (any, error) {
	return tt.text(value)
}

func (tt *TextType) text(value any) (any, error) {
	switch v := anynil.Deref(value).(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		if i, ok := underlyingInt(v); ok {
			return strconv.FormatInt(i, 10), nil
		}
		return nil, conversionError(tt.Name(), value, ErrInvalidInput)
	}
}

func (tt *TextType) ToParameterKind(value any, d Driver) ParameterKind {
	if anynil.Is(value) {
		return ParamNull
	}
	return ParamText
}

// Marshal returns text input as is. Int input is formatted in base 10. Fields input
// cannot be represented as text and holds no value.
func (tt *TextType) Marshal(in Input) (any, error) {
	switch in.Kind() {
	case InputText:
		return in.Text(), nil
	case InputInt:
		return strconv.FormatInt(in.Int(), 10), nil
	case InputTime:
		return in.Time().Format(time.RFC3339Nano), nil
	}
	return nil, nil
}
