package dbtype

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uim-go/dbtype/internal/anynil"
	"golang.org/x/text/language"
)

// DateTimeStorageFormat is the layout DateTimeType writes to the database.
const DateTimeStorageFormat = "2006-01-02 15:04:05"

// zeroDatePrefix starts the invalid dates some databases store in place of NULL.
const zeroDatePrefix = "0000-00-00"

// DefaultDateTimeMarshalFormats are the layouts DateTimeType.Marshal accepts, in the
// order they are tried.
var DefaultDateTimeMarshalFormats = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// storedFallbackLayouts are tried when a stored string does not match the storage
// format, so that values written by other tools can be read back.
var storedFallbackLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DateTimeType converts time.Time values to database strings and back. It also
// marshals request data in many shapes into time.Time.
//
// Three time zones are involved. Strings read from and written to the database are in
// the database time zone. Marshalled strings without an offset are in the user time
// zone. Every time.Time returned is in the application time zone unless
// SetKeepDatabaseTimezone(true) is in effect. An unset database or user time zone
// falls back to the application time zone.
//
// A DateTimeType must be fully configured before it is shared between goroutines.
type DateTimeType struct {
	Base

	storageFormat  string
	marshalFormats []string

	useLocaleParser bool
	localeFormat    LocaleFormat
	factory         TimeFactory

	dbLocation   *time.Location
	userLocation *time.Location
	appLocation  *time.Location

	truncateToDate       bool
	keepDatabaseTimezone bool

	log levelLogger
}

// NewDateTimeType returns a DateTimeType identified by name. Its time factory is
// LocaleTimes for the undetermined locale and its application time zone is time.Local.
func NewDateTimeType(name string) *DateTimeType {
	return NewDateTimeTypeWithFactory(name, nil)
}

// NewDateTimeTypeWithFactory is like NewDateTimeType but constructs values with
// factory. A nil factory selects the default.
func NewDateTimeTypeWithFactory(name string, factory TimeFactory) *DateTimeType {
	return &DateTimeType{
		Base:           NewBase(name, ""),
		storageFormat:  DateTimeStorageFormat,
		marshalFormats: append([]string(nil), DefaultDateTimeMarshalFormats...),
		factory:        selectTimeFactory(factory, LocaleTimes{Tag: language.Und}),
		appLocation:    time.Local,
	}
}

func selectTimeFactory(preferred, fallback TimeFactory) TimeFactory {
	if preferred != nil {
		return preferred
	}
	return fallback
}

// SetDatabaseTimezone sets the time zone of strings stored in the database. nil
// means the application time zone.
func (dt *DateTimeType) SetDatabaseTimezone(loc *time.Location) *DateTimeType {
	dt.dbLocation = loc
	return dt
}

func (dt *DateTimeType) DatabaseTimezone() *time.Location {
	return dt.dbLocation
}

// SetUserTimezone sets the time zone of marshalled strings that carry no offset. nil
// means the application time zone.
func (dt *DateTimeType) SetUserTimezone(loc *time.Location) *DateTimeType {
	dt.userLocation = loc
	return dt
}

func (dt *DateTimeType) UserTimezone() *time.Location {
	return dt.userLocation
}

// SetApplicationTimezone sets the time zone of returned values. nil restores
// time.Local.
func (dt *DateTimeType) SetApplicationTimezone(loc *time.Location) *DateTimeType {
	dt.appLocation = orLocal(loc)
	return dt
}

func (dt *DateTimeType) ApplicationTimezone() *time.Location {
	return dt.appLocation
}

// SetDatabaseTimezoneName is SetDatabaseTimezone for an IANA zone name. An empty
// name unsets the zone.
func (dt *DateTimeType) SetDatabaseTimezoneName(name string) error {
	loc, err := dt.loadLocation(name)
	if err != nil {
		return err
	}
	dt.SetDatabaseTimezone(loc)
	return nil
}

func (dt *DateTimeType) SetUserTimezoneName(name string) error {
	loc, err := dt.loadLocation(name)
	if err != nil {
		return err
	}
	dt.SetUserTimezone(loc)
	return nil
}

func (dt *DateTimeType) SetApplicationTimezoneName(name string) error {
	loc, err := dt.loadLocation(name)
	if err != nil {
		return err
	}
	dt.SetApplicationTimezone(loc)
	return nil
}

func (dt *DateTimeType) loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, conversionError(dt.Name(), name, err)
	}
	return loc, nil
}

// SetKeepDatabaseTimezone controls whether values read from the database stay in the
// database time zone instead of being converted to the application time zone.
func (dt *DateTimeType) SetKeepDatabaseTimezone(keep bool) *DateTimeType {
	dt.keepDatabaseTimezone = keep
	return dt
}

func (dt *DateTimeType) KeepDatabaseTimezone() bool {
	return dt.keepDatabaseTimezone
}

// SetTruncateToDate controls whether values read from the database have their time of
// day set to midnight.
func (dt *DateTimeType) SetTruncateToDate(truncate bool) *DateTimeType {
	dt.truncateToDate = truncate
	return dt
}

// SetStorageFormat sets the layout used to write values to the database.
func (dt *DateTimeType) SetStorageFormat(layout string) *DateTimeType {
	dt.storageFormat = layout
	return dt
}

func (dt *DateTimeType) StorageFormat() string {
	return dt.storageFormat
}

// SetMarshalFormats replaces the layouts tried by Marshal. The first layout that
// parses wins.
func (dt *DateTimeType) SetMarshalFormats(layouts []string) *DateTimeType {
	dt.marshalFormats = append([]string(nil), layouts...)
	return dt
}

func (dt *DateTimeType) MarshalFormats() []string {
	return append([]string(nil), dt.marshalFormats...)
}

// UseLocaleParser controls whether Marshal parses strings with the locale format set
// by SetLocaleFormat instead of the marshal formats. Enabling it fails if the time
// factory does not implement LocaleParser.
func (dt *DateTimeType) UseLocaleParser(enable bool) error {
	if !enable {
		dt.useLocaleParser = false
		return nil
	}

	if _, ok := dt.factory.(LocaleParser); !ok {
		return conversionError(dt.Name(), nil, fmt.Errorf("%w by %s", ErrLocaleUnsupported, dt.factory.Name()))
	}

	dt.useLocaleParser = true
	return nil
}

func (dt *DateTimeType) LocaleParserEnabled() bool {
	return dt.useLocaleParser
}

func (dt *DateTimeType) SetLocaleFormat(format LocaleFormat) *DateTimeType {
	dt.localeFormat = format
	return dt
}

func (dt *DateTimeType) LocaleFormat() LocaleFormat {
	return dt.localeFormat
}

func (dt *DateTimeType) TimeFactory() TimeFactory {
	return dt.factory
}

// SetLogger attaches a logger. Marshal input that matches no format is logged at
// LogLevelDebug. A zero level means LogLevelDebug.
func (dt *DateTimeType) SetLogger(logger Logger, level LogLevel) *DateTimeType {
	dt.log = newLevelLogger(logger, level)
	return dt
}

func (dt *DateTimeType) databaseLocation() *time.Location {
	if dt.dbLocation != nil {
		return dt.dbLocation
	}
	return dt.appLocation
}

func (dt *DateTimeType) userInputLocation() *time.Location {
	if dt.userLocation != nil {
		return dt.userLocation
	}
	return dt.appLocation
}

// ToStorage formats value with the storage format in the database time zone. nil,
// strings and byte slices are returned unchanged. Integers are seconds since the Unix
// epoch.
func (dt *DateTimeType) ToStorage(value any, d Driver) (any, error) {
	var t time.Time

	switch v := anynil.Deref(value).(type) {
	case nil:
		return nil, nil
	case string, []byte:
		return v, nil
	case time.Time:
		t = v
	default:
		sec, ok := underlyingInt(v)
		if !ok {
			return nil, conversionError(dt.Name(), value, ErrInvalidInput)
		}
		t = dt.factory.FromUnix(sec, time.UTC)
	}

	if dt.dbLocation != nil {
		t = t.In(dt.dbLocation)
	}

	return t.Format(dt.storageFormat), nil
}

// ToApplication converts a database value to time.Time. It returns nil for NULL,
// empty strings and dates starting with 0000-00-00.
func (dt *DateTimeType) ToApplication(value any, d Driver) (any, error) {
	t, ok, err := dt.ToTime(value)
	if err != nil || !ok {
		return nil, err
	}
	return t, nil
}

// ToTime is the typed form of ToApplication. ok is false when value holds no date.
func (dt *DateTimeType) ToTime(value any) (t time.Time, ok bool, err error) {
	switch v := anynil.Deref(value).(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		t = v
	case string:
		t, ok, err = dt.parseStored(v)
		if !ok || err != nil {
			return time.Time{}, false, err
		}
	case []byte:
		t, ok, err = dt.parseStored(string(v))
		if !ok || err != nil {
			return time.Time{}, false, err
		}
	default:
		sec, isInt := underlyingInt(v)
		if !isInt {
			return time.Time{}, false, conversionError(dt.Name(), value, ErrInvalidInput)
		}
		t = dt.factory.FromUnix(sec, time.UTC)
	}

	return dt.fromDatabase(t), true, nil
}

func (dt *DateTimeType) parseStored(s string) (time.Time, bool, error) {
	if s == "" || strings.HasPrefix(s, zeroDatePrefix) {
		return time.Time{}, false, nil
	}

	loc := dt.databaseLocation()
	t, err := dt.factory.Parse(dt.storageFormat, s, loc)
	if err == nil {
		return t, true, nil
	}

	for _, layout := range storedFallbackLayouts {
		if t, fallbackErr := dt.factory.Parse(layout, s, loc); fallbackErr == nil {
			return t, true, nil
		}
	}

	return time.Time{}, false, conversionError(dt.Name(), s, err)
}

func (dt *DateTimeType) fromDatabase(t time.Time) time.Time {
	if !dt.keepDatabaseTimezone {
		t = t.In(dt.appLocation)
	}

	if dt.truncateToDate {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}

	return t
}

// ManyToApplication converts values[field] for every field present in values. values
// is left untouched when any field fails to convert.
func (dt *DateTimeType) ManyToApplication(values map[string]any, fields []string, d Driver) (map[string]any, error) {
	converted := make(map[string]any, len(fields))
	for _, field := range fields {
		v, present := values[field]
		if !present {
			continue
		}

		t, ok, err := dt.ToTime(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		if !ok {
			converted[field] = nil
			continue
		}
		converted[field] = t
	}

	for field, v := range converted {
		values[field] = v
	}
	return values, nil
}

// ToParameterKind always reports ParamText. Values are bound as strings whatever their
// Go type.
func (dt *DateTimeType) ToParameterKind(value any, d Driver) ParameterKind {
	return ParamText
}

// Marshal converts request data to time.Time in the application time zone. See
// MarshalTime.
func (dt *DateTimeType) Marshal(in Input) (any, error) {
	t, ok, err := dt.MarshalTime(in)
	if err != nil || !ok {
		return nil, err
	}
	return t, nil
}

// MarshalTime is the typed form of Marshal. ok is false when in holds no date.
//
// Time input is converted to the application time zone. Absent, blank and boolean
// input holds no date. Integers and strings of digits are seconds since the Unix
// epoch. Other strings are parsed with the locale parser, if enabled, or with the
// marshal formats in order; a string no marshal format accepts holds no date, while a
// string the locale parser rejects is an error. Fields input is assembled from the
// year, month, day, hour, minute, second, microsecond, meridian and timezone fields.
func (dt *DateTimeType) MarshalTime(in Input) (time.Time, bool, error) {
	switch in.Kind() {
	case InputTime:
		return in.Time().In(dt.appLocation), true, nil
	case InputAbsent, InputBool:
		return time.Time{}, false, nil
	case InputInt:
		return dt.factory.FromUnix(in.Int(), dt.appLocation), true, nil
	case InputText:
		return dt.marshalText(in.Text())
	case InputFields:
		return dt.marshalFields(in.Fields())
	}

	return time.Time{}, false, conversionError(dt.Name(), in.Value(), ErrInvalidInput)
}

func (dt *DateTimeType) marshalText(s string) (time.Time, bool, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false, nil
	}

	if isDigits(s) {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			dt.log.log(LogLevelDebug, "marshal: epoch out of range", map[string]any{"type": dt.Name(), "value": logValue(s)})
			return time.Time{}, false, nil
		}
		return dt.factory.FromUnix(sec, dt.appLocation), true, nil
	}

	if dt.useLocaleParser {
		t, err := dt.parseLocale(s)
		if err != nil {
			return time.Time{}, false, conversionError(dt.Name(), s, err)
		}
		return t.In(dt.appLocation), true, nil
	}

	t, ok := dt.parseValue(s)
	if !ok {
		dt.log.log(LogLevelDebug, "marshal: no format matched", map[string]any{"type": dt.Name(), "value": logValue(s)})
		return time.Time{}, false, nil
	}
	return t.In(dt.appLocation), true, nil
}

func (dt *DateTimeType) parseLocale(s string) (time.Time, error) {
	lp, ok := dt.factory.(LocaleParser)
	if !ok {
		return time.Time{}, ErrLocaleUnsupported
	}
	return lp.ParseLocale(s, dt.localeFormat, dt.userInputLocation())
}

func (dt *DateTimeType) parseValue(s string) (time.Time, bool) {
	loc := dt.userInputLocation()
	for _, layout := range dt.marshalFormats {
		t, err := dt.factory.Parse(layout, s, loc)
		if err != nil {
			continue
		}
		// time.Parse accepts fractional seconds the layout does not ask for.
		if t.Nanosecond() != 0 && !hasFractionalSeconds(layout) {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

func hasFractionalSeconds(layout string) bool {
	for _, frac := range []string{".0", ".9", ",0", ",9"} {
		if strings.Contains(layout, frac) {
			return true
		}
	}
	return false
}

var errFieldRange = errors.New("field out of range")

func (dt *DateTimeType) marshalFields(fields map[string]string) (time.Time, bool, error) {
	var joined strings.Builder
	for _, v := range fields {
		joined.WriteString(v)
	}
	if joined.Len() == 0 {
		return time.Time{}, false, nil
	}

	loc := dt.userInputLocation()
	if name := fields["timezone"]; name != "" {
		var err error
		loc, err = time.LoadLocation(name)
		if err != nil {
			return time.Time{}, false, conversionError(dt.Name(), name, err)
		}
	}

	hasDate := isNumeric(fields["year"]) && isNumeric(fields["month"]) && isNumeric(fields["day"])

	names := []string{"year", "month", "day", "hour", "minute", "second", "microsecond"}
	if !hasDate {
		names = names[3:]
	}
	n := make(map[string]int, len(names))
	for _, name := range names {
		v, err := leadingInt(fields[name])
		if err != nil {
			return time.Time{}, false, conversionError(dt.Name(), fields, fmt.Errorf("%w: %s %q", errFieldRange, name, fields[name]))
		}
		n[name] = v
	}
	year, month, day := n["year"], n["month"], n["day"]
	hour, minute, second, microsecond := n["hour"], n["minute"], n["second"], n["microsecond"]

	if meridian, ok := fields["meridian"]; ok {
		if hour == 12 {
			hour = 0
		}
		if strings.ToLower(meridian) != "am" {
			hour += 12
		}
	}

	if err := checkFieldRanges(hasDate, month, day, hour, minute, second, microsecond); err != nil {
		return time.Time{}, false, conversionError(dt.Name(), fields, err)
	}

	if !hasDate {
		now := time.Now().In(loc)
		year, month, day = now.Year(), int(now.Month()), now.Day()
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, microsecond*1000, loc)
	return t.In(dt.appLocation), true, nil
}

func checkFieldRanges(hasDate bool, month, day, hour, minute, second, microsecond int) error {
	switch {
	case hasDate && (month < 1 || month > 12):
		return fmt.Errorf("%w: month %d", errFieldRange, month)
	case hasDate && (day < 1 || day > 31):
		return fmt.Errorf("%w: day %d", errFieldRange, day)
	case hour < 0 || hour > 23:
		return fmt.Errorf("%w: hour %d", errFieldRange, hour)
	case minute < 0 || minute > 59:
		return fmt.Errorf("%w: minute %d", errFieldRange, minute)
	case second < 0 || second > 59:
		return fmt.Errorf("%w: second %d", errFieldRange, second)
	case microsecond < 0 || microsecond > 999999:
		return fmt.Errorf("%w: microsecond %d", errFieldRange, microsecond)
	}
	return nil
}
