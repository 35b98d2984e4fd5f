package dbtype

// DateStorageFormat is the layout the date converter writes to the database.
const DateStorageFormat = "2006-01-02"

// DefaultDateMarshalFormats are the layouts the date converter's Marshal accepts.
var DefaultDateMarshalFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// NewDateType returns a DateTimeType for date columns. It stores only the date part and
// values read from the database are truncated to midnight.
func NewDateType(name string) *DateTimeType {
	dt := NewDateTimeType(name)
	dt.Base = NewBase(name, "datetime")
	return dt.
		SetStorageFormat(DateStorageFormat).
		SetMarshalFormats(DefaultDateMarshalFormats).
		SetTruncateToDate(true)
}
