package dbtype

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/uim-go/dbtype/internal/anynil"
)

// DecimalType converts exact numeric columns to decimal.Decimal. Values are stored as
// text so no precision is lost to float conversion.
type DecimalType struct {
	Base

	scale    int32
	hasScale bool
}

func NewDecimalType(name string) *DecimalType {
	return &DecimalType{Base: NewBase(name, "")}
}

// SetScale fixes the number of digits after the decimal point, as in a
// numeric(precision, scale) column. Values are rounded half away from zero and stored
// with exactly that many digits.
func (dt *DecimalType) SetScale(places int32) *DecimalType {
	dt.scale = places
	dt.hasScale = true
	return dt
}

// Scale returns the fixed scale and whether one is set.
func (dt *DecimalType) Scale() (int32, bool) {
	return dt.scale, dt.hasScale
}

func (dt *DecimalType) ToStorage(value any, d Driver) (any, error) {
	switch v := anynil.Deref(value).(type) {
	case nil:
		return nil, nil
	case string:
		if !dt.hasScale {
			return v, nil
		}
	case decimal.NullDecimal:
		if !v.Valid {
			return nil, nil
		}
		return dt.format(v.Decimal), nil
	}

	dec, err := dt.decimal(value)
	if err != nil {
		return nil, err
	}
	return dt.format(dec), nil
}

func (dt *DecimalType) format(dec decimal.Decimal) string {
	if dt.hasScale {
		return dec.StringFixed(dt.scale)
	}
	return dec.String()
}

func (dt *DecimalType) round(dec decimal.Decimal) decimal.Decimal {
	if dt.hasScale {
		return dec.Round(dt.scale)
	}
	return dec
}

func (dt *DecimalType) ToApplication(value any, d Driver) (any, error) {
	if anynil.Is(value) {
		return nil, nil
	}

	dec, err := dt.decimal(value)
	if err != nil {
		return nil, err
	}
	return dt.round(dec), nil
}

func (dt *DecimalType) decimal(value any) (decimal.Decimal, error) {
	switch v := anynil.Deref(value).(type) {
	case decimal.Decimal:
		return v, nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, conversionError(dt.Name(), value, err)
		}
		return dec, nil
	case []byte:
		dec, err := decimal.NewFromString(string(v))
		if err != nil {
			return decimal.Decimal{}, conversionError(dt.Name(), value, err)
		}
		return dec, nil
	case uint64:
		// uint64 could be greater than int64 so convert to string then to decimal
		dec, err := decimal.NewFromString(strconv.FormatUint(v, 10))
		if err != nil {
			return decimal.Decimal{}, conversionError(dt.Name(), value, err)
		}
		return dec, nil
	default:
		if i, ok := underlyingInt(v); ok {
			return decimal.New(i, 0), nil
		}
	}

	return decimal.Decimal{}, conversionError(dt.Name(), value, ErrInvalidInput)
}

func (dt *DecimalType) ToParameterKind(value any, d Driver) ParameterKind {
	if anynil.Is(value) {
		return ParamNull
	}
	return ParamText
}

// Marshal accepts text and integer input. Text that is not a number holds no value.
func (dt *DecimalType) Marshal(in Input) (any, error) {
	switch in.Kind() {
	case InputInt:
		return dt.round(decimal.New(in.Int(), 0)), nil
	case InputText:
		dec, err := decimal.NewFromString(in.Text())
		if err != nil {
			return nil, nil
		}
		return dt.round(dec), nil
	}
	return nil, nil
}
