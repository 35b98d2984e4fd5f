package dbtype

import (
	"github.com/gofrs/uuid"
	"github.com/uim-go/dbtype/internal/anynil"
)

// UUIDType stores UUIDs in their canonical textual form and converts them to
// uuid.UUID. It generates version 4 UUIDs as new primary keys.
type UUIDType struct {
	Base
}

func NewUUIDType(name string) *UUIDType {
	return &UUIDType{Base: NewBase(name, "")}
}

func (ut *UUIDType) ToStorage(value any, d Driver) (any, error) {
	switch v := anynil.Deref(value).(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case uuid.UUID:
		return v.String(), nil
	case [16]byte:
		return uuid.UUID(v).String(), nil
	case []byte:
		u, err := uuid.FromBytes(v)
		if err != nil {
			return nil, conversionError(ut.Name(), value, err)
		}
		return u.String(), nil
	}

	return nil, conversionError(ut.Name(), value, ErrInvalidInput)
}

func (ut *UUIDType) ToApplication(value any, d Driver) (any, error) {
	var (
		u   uuid.UUID
		err error
	)

	switch v := anynil.Deref(value).(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return v, nil
	case string:
		u, err = uuid.FromString(v)
	case []byte:
		if len(v) == 16 {
			u, err = uuid.FromBytes(v)
		} else {
			u, err = uuid.FromString(string(v))
		}
	default:
		err = ErrInvalidInput
	}

	if err != nil {
		return nil, conversionError(ut.Name(), value, err)
	}
	return u, nil
}

func (ut *UUIDType) ToParameterKind(value any, d Driver) ParameterKind {
	if anynil.Is(value) {
		return ParamNull
	}
	return ParamText
}

// Marshal parses text input. Text of exactly 16 bytes is taken as the binary form.
// Malformed text holds no value.
func (ut *UUIDType) Marshal(in Input) (any, error) {
	if in.Kind() != InputText || in.Text() == "" {
		return nil, nil
	}

	var (
		u   uuid.UUID
		err error
	)
	if s := in.Text(); len(s) == uuid.Size {
		u, err = uuid.FromBytes([]byte(s))
	} else {
		u, err = uuid.FromString(s)
	}
	if err != nil {
		return nil, nil
	}
	return u, nil
}

// NewID returns a new random uuid.UUID, or nil if the random source fails.
func (ut *UUIDType) NewID() any {
	u, err := uuid.NewV4()
	if err != nil {
		return nil
	}
	return u
}
