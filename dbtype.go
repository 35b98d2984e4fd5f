package dbtype

// ParameterKind is the binding mode used when a value is sent to the database as a
// prepared statement parameter.
type ParameterKind int8

const (
	ParamNull ParameterKind = iota
	ParamBool
	ParamInt
	ParamText
	ParamBinary
)

func (pk ParameterKind) String() string {
	switch pk {
	case ParamNull:
		return "null"
	case ParamBool:
		return "bool"
	case ParamInt:
		return "int"
	case ParamText:
		return "text"
	case ParamBinary:
		return "binary"
	default:
		return "invalid"
	}
}

// Driver is the part of a database driver that converters may consult for database
// preferences. The converters in this package do not depend on it; it is reserved for
// converters that need dialect specific behavior. A nil Driver is always accepted.
type Driver interface {
	Dialect() string
}

// DriverInfo is a static Driver.
type DriverInfo struct {
	Name string
}

func (di DriverInfo) Dialect() string {
	return di.Name
}

// Converter converts values between their application representation and a
// representation acceptable to a database.
type Converter interface {
	// ToStorage converts an application value to one acceptable by a database. Values
	// that are already in storage shape (e.g. nil or a string) are returned unchanged.
	ToStorage(value any, d Driver) (any, error)

	// ToApplication converts a value read from a database to its application
	// representation. Invalid values that some databases store in place of NULL
	// convert to nil rather than failing.
	ToApplication(value any, d Driver) (any, error)

	// ToParameterKind reports how value should be bound in a prepared statement.
	ToParameterKind(value any, d Driver) ParameterKind

	// Marshal converts loosely typed external input such as request data to the
	// application representation. Blank, absent and boolean input is "no value" and
	// converts to nil without error.
	Marshal(in Input) (any, error)

	// Name returns the type identifier of the converter or "" if it has none.
	Name() string

	// BaseType returns the name of the type this converter specializes or "".
	BaseType() string

	// NewID generates a new primary key value. Converters that cannot generate keys
	// return nil.
	NewID() any
}

// BatchConverter is implemented by converters that can convert many fields of one
// row at once.
type BatchConverter interface {
	// ManyToApplication converts values[field] for each field in fields in place and
	// returns values. Fields missing from values are skipped.
	ManyToApplication(values map[string]any, fields []string, d Driver) (map[string]any, error)
}

// Base implements the identity part of Converter. It is meant to be embedded.
type Base struct {
	name     string
	baseType string
}

// NewBase returns a Base identified by name that specializes baseType.
func NewBase(name, baseType string) Base {
	return Base{name: name, baseType: baseType}
}

func (b Base) Name() string {
	return b.name
}

func (b Base) BaseType() string {
	return b.baseType
}

func (b Base) NewID() any {
	return nil
}

// ManyToApplication converts fields of values one at a time with c. It is the
// fallback for converters that do not implement BatchConverter. values is only
// updated once every field has converted.
func ManyToApplication(c Converter, values map[string]any, fields []string, d Driver) (map[string]any, error) {
	if bc, ok := c.(BatchConverter); ok {
		return bc.ManyToApplication(values, fields, d)
	}

	converted := make(map[string]any, len(fields))
	for _, field := range fields {
		v, ok := values[field]
		if !ok {
			continue
		}

		cv, err := c.ToApplication(v, d)
		if err != nil {
			return nil, err
		}
		converted[field] = cv
	}

	for field, v := range converted {
		values[field] = v
	}
	return values, nil
}
