package dbtype_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uim-go/dbtype"
)

var (
	utcPlus2  = time.FixedZone("UTC+2", 2*60*60)
	utcMinus5 = time.FixedZone("UTC-5", -5*60*60)
)

func newDateTime(app *time.Location) *dbtype.DateTimeType {
	return dbtype.NewDateTimeType("datetime").SetApplicationTimezone(app)
}

func requireSameTime(t testing.TB, expected time.Time, actual any) {
	t.Helper()

	got, ok := actual.(time.Time)
	require.Truef(t, ok, "expected time.Time, got %T", actual)
	require.Truef(t, expected.Equal(got), "expected %v, got %v", expected, got)
	require.Equal(t, expected.Location().String(), got.Location().String())
}

func TestDateTimeMarshalNoValue(t *testing.T) {
	dt := newDateTime(time.UTC)

	for i, in := range []dbtype.Input{
		dbtype.Absent(),
		dbtype.Text(""),
		dbtype.Text("   "),
		dbtype.Bool(false),
		dbtype.Bool(true),
		dbtype.Fields(nil),
		dbtype.Fields(map[string]any{"year": "", "month": "", "day": nil}),
	} {
		v, err := dt.Marshal(in)
		require.NoErrorf(t, err, "%d", i)
		assert.Nilf(t, v, "%d", i)
	}
}

func TestDateTimeMarshalTime(t *testing.T) {
	dt := newDateTime(utcPlus2)

	in := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	v, err := dt.Marshal(dbtype.Time(in))
	require.NoError(t, err)
	requireSameTime(t, in.In(utcPlus2), v)
	assert.Equal(t, 12, v.(time.Time).Hour())
}

func TestDateTimeMarshalEpoch(t *testing.T) {
	dt := newDateTime(utcPlus2).SetUserTimezone(utcMinus5)

	fromText, err := dt.Marshal(dbtype.Text("1700000000"))
	require.NoError(t, err)
	fromInt, err := dt.Marshal(dbtype.Int(1700000000))
	require.NoError(t, err)

	requireSameTime(t, time.Unix(1700000000, 0).In(utcPlus2), fromText)
	requireSameTime(t, fromText.(time.Time), fromInt)
}

func TestDateTimeMarshalText(t *testing.T) {
	dt := newDateTime(utcPlus2).SetUserTimezone(utcMinus5)

	tests := []struct {
		in       string
		expected time.Time
	}{
		{"2024-01-05 10:30", time.Date(2024, 1, 5, 10, 30, 0, 0, utcMinus5)},
		{"2024-01-05 10:30:15", time.Date(2024, 1, 5, 10, 30, 15, 0, utcMinus5)},
		{"2024-01-05T10:30", time.Date(2024, 1, 5, 10, 30, 0, 0, utcMinus5)},
		{"2024-01-05T10:30:15", time.Date(2024, 1, 5, 10, 30, 15, 0, utcMinus5)},
		{"2024-01-05T10:30:15+05:00", time.Date(2024, 1, 5, 10, 30, 15, 0, time.FixedZone("", 5*60*60))},
		{"2024-01-05T10:30:15Z", time.Date(2024, 1, 5, 10, 30, 15, 0, time.UTC)},
	}

	for _, tt := range tests {
		v, err := dt.Marshal(dbtype.Text(tt.in))
		require.NoError(t, err, tt.in)
		requireSameTime(t, tt.expected.In(utcPlus2), v)
	}
}

func TestDateTimeMarshalTextMalformedIsNoValue(t *testing.T) {
	dt := newDateTime(time.UTC)

	for _, s := range []string{
		"not a date",
		"05/01/2024",
		"2024-01-05 10",
		"-17",
		"2024-13-45 10:00",
		"2024-01-05 10:00:00.123456789",
		"2024-01-05T10:00:00.5Z",
	} {
		v, err := dt.Marshal(dbtype.Text(s))
		require.NoError(t, err, s)
		assert.Nil(t, v, s)
	}
}

func TestDateTimeMarshalFractionalSecondsNeedFractionalLayout(t *testing.T) {
	dt := newDateTime(time.UTC).SetUserTimezone(time.UTC).
		SetMarshalFormats([]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.000000"})

	v, err := dt.Marshal(dbtype.Text("2024-01-05 10:00:00.123456"))
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 10, 0, 0, 123456000, time.UTC), v)

	v, err = dt.Marshal(dbtype.Text("2024-01-05 10:00:00"))
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), v)
}

func TestDateTimeMarshalFormatsFirstMatchWins(t *testing.T) {
	dt := newDateTime(time.UTC).SetMarshalFormats([]string{"2006-02-01", "2006-01-02"})
	require.Equal(t, []string{"2006-02-01", "2006-01-02"}, dt.MarshalFormats())

	for i := 0; i < 3; i++ {
		v, err := dt.Marshal(dbtype.Text("2024-03-04"))
		require.NoError(t, err)
		requireSameTime(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), v)
	}
}

func TestDateTimeMarshalFormatsRoundTrip(t *testing.T) {
	dt := newDateTime(time.UTC).SetUserTimezone(time.UTC)
	in := time.Date(2024, 7, 9, 8, 7, 0, 0, time.UTC)

	for _, layout := range dbtype.DefaultDateTimeMarshalFormats {
		v, err := dt.Marshal(dbtype.Text(in.Format(layout)))
		require.NoError(t, err, layout)
		requireSameTime(t, in, v)
	}
}

func TestDateTimeMarshalFieldsMeridian(t *testing.T) {
	dt := newDateTime(utcPlus2).SetUserTimezone(utcMinus5)

	fromFields, err := dt.Marshal(dbtype.Fields(map[string]any{"year": 2024, "month": 1, "day": 5, "hour": 3, "meridian": "pm"}))
	require.NoError(t, err)
	fromText, err := dt.Marshal(dbtype.Text("2024-01-05T15:00:00"))
	require.NoError(t, err)

	requireSameTime(t, fromText.(time.Time), fromFields)

	tests := []struct {
		hour     any
		meridian string
		expected int
	}{
		{12, "am", 0},
		{12, "pm", 12},
		{1, "AM", 1},
		{11, "PM", 23},
		{"7", "pm", 19},
		{3, "", 15},
	}

	for _, tt := range tests {
		got, ok, err := dt.MarshalTime(dbtype.Fields(map[string]any{"year": "2024", "month": "1", "day": "5", "hour": tt.hour, "meridian": tt.meridian}))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tt.expected, got.In(utcMinus5).Hour(), "%v %s", tt.hour, tt.meridian)
	}
}

func TestDateTimeMarshalFieldsWithoutMeridian(t *testing.T) {
	dt := newDateTime(time.UTC)

	for _, fields := range []map[string]any{
		{"year": 2024, "month": 1, "day": 5, "hour": 3},
		{"year": 2024, "month": 1, "day": 5, "hour": 3, "meridian": nil},
	} {
		got, ok, err := dt.MarshalTime(dbtype.Fields(fields))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 3, got.Hour())
	}
}

func TestDateTimeMarshalJSONNumberEpoch(t *testing.T) {
	dt := newDateTime(time.UTC)

	in, err := dbtype.InputOf(float64(1700000000))
	require.NoError(t, err)
	v, err := dt.Marshal(in)
	require.NoError(t, err)
	requireSameTime(t, time.Unix(1700000000, 0).UTC(), v)
}

func TestDateTimeMarshalFields(t *testing.T) {
	dt := newDateTime(utcPlus2)

	got, ok, err := dt.MarshalTime(dbtype.Fields(map[string]any{
		"year":        "2024",
		"month":       "2",
		"day":         "29",
		"hour":        "10",
		"minute":      "5",
		"second":      "7",
		"microsecond": "123456",
		"timezone":    "UTC",
	}))
	require.NoError(t, err)
	require.True(t, ok)
	requireSameTime(t, time.Date(2024, 2, 29, 10, 5, 7, 123456000, time.UTC).In(utcPlus2), got)
	assert.Equal(t, 12, got.Hour())
}

func TestDateTimeMarshalFieldsTimeOnly(t *testing.T) {
	dt := newDateTime(utcMinus5).SetUserTimezone(utcMinus5)

	before := time.Now().In(utcMinus5)
	got, ok, err := dt.MarshalTime(dbtype.Fields(map[string]any{"hour": "10", "minute": "30"}))
	require.NoError(t, err)
	require.True(t, ok)
	after := time.Now().In(utcMinus5)

	sameDay := func(a, b time.Time) bool {
		return a.Year() == b.Year() && a.YearDay() == b.YearDay()
	}
	assert.Truef(t, sameDay(before, got) || sameDay(after, got), "%v is not today", got)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 30, got.Minute())
}

func TestDateTimeMarshalFieldsNonNumericDate(t *testing.T) {
	dt := newDateTime(time.UTC).SetUserTimezone(time.UTC)

	for _, date := range []map[string]any{
		{"year": "NaN", "month": "Inf", "day": "1e1"},
		{"year": "0x7e8", "month": "1", "day": "5"},
		{"year": "2024", "month": "", "day": "5"},
	} {
		fields := map[string]any{"hour": "10"}
		for k, v := range date {
			fields[k] = v
		}

		before := time.Now().UTC()
		got, ok, err := dt.MarshalTime(dbtype.Fields(fields))
		require.NoErrorf(t, err, "%v", date)
		require.Truef(t, ok, "%v", date)
		assert.Equalf(t, 10, got.Hour(), "%v", date)
		assert.Truef(t, got.Year() == before.Year() || got.Year() == time.Now().UTC().Year(), "%v", date)
	}

	got, ok, err := dt.MarshalTime(dbtype.Fields(map[string]any{"year": " 2.024e3 ", "month": "+1", "day": "5"}))
	require.NoError(t, err)
	require.True(t, ok)
	requireSameTime(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestDateTimeMarshalFieldsIntegerOverflow(t *testing.T) {
	dt := newDateTime(time.UTC)

	for _, fields := range []map[string]any{
		{"year": "99999999999", "month": "1", "day": "5"},
		{"year": "2024", "month": "1", "day": "5", "hour": "-99999999999"},
	} {
		_, err := dt.Marshal(dbtype.Fields(fields))
		var convErr *dbtype.ConversionError
		require.Truef(t, errors.As(err, &convErr), "%v", fields)
		assert.Equal(t, "datetime", convErr.Type)
	}
}

func TestDateTimeMarshalFieldsOutOfRange(t *testing.T) {
	dt := newDateTime(time.UTC)

	_, err := dt.Marshal(dbtype.Fields(map[string]any{"year": 2024, "month": 1, "day": 5, "hour": 25}))
	require.Error(t, err)

	var convErr *dbtype.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "datetime", convErr.Type)

	_, err = dt.Marshal(dbtype.Fields(map[string]any{"year": 2024, "month": 1, "day": 5, "timezone": "Not/AZone"}))
	require.Error(t, err)
}

func TestDateTimeLocaleParser(t *testing.T) {
	dt := newDateTime(time.UTC).SetUserTimezone(utcMinus5)
	require.NoError(t, dt.UseLocaleParser(true))
	require.True(t, dt.LocaleParserEnabled())

	v, err := dt.Marshal(dbtype.Text("1/5/24, 3:04 PM"))
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 15, 4, 0, 0, utcMinus5).In(time.UTC), v)

	_, err = dt.Marshal(dbtype.Text("not a date"))
	require.Error(t, err)
	var convErr *dbtype.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "not a date", convErr.Value)

	// digits are an epoch even with the locale parser enabled
	v, err = dt.Marshal(dbtype.Text("0"))
	require.NoError(t, err)
	requireSameTime(t, time.Unix(0, 0).UTC(), v)

	require.NoError(t, dt.UseLocaleParser(false))
	v, err = dt.Marshal(dbtype.Text("not a date"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDateTimeLocaleParserUnsupported(t *testing.T) {
	dt := dbtype.NewDateTimeTypeWithFactory("datetime", dbtype.StdTimes{})

	err := dt.UseLocaleParser(true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbtype.ErrLocaleUnsupported))
	assert.False(t, dt.LocaleParserEnabled())

	require.NoError(t, dt.UseLocaleParser(false))
}

func TestDateTimeToApplication(t *testing.T) {
	dt := newDateTime(utcPlus2).SetDatabaseTimezone(time.UTC)

	v, err := dt.ToApplication("2024-01-05 10:00:00", nil)
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 12, 0, 0, 0, utcPlus2), v)
	assert.Equal(t, 12, v.(time.Time).Hour())

	v, err = dt.ToApplication([]byte("2024-01-05 10:00:00"), nil)
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 12, 0, 0, 0, utcPlus2), v)

	v, err = dt.ToApplication(int64(1700000000), nil)
	require.NoError(t, err)
	requireSameTime(t, time.Unix(1700000000, 0).In(utcPlus2), v)

	v, err = dt.ToApplication("2024-01-05T10:00:00Z", nil)
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 12, 0, 0, 0, utcPlus2), v)

	v, err = dt.ToApplication(time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 12, 0, 0, 0, utcPlus2), v)
}

func TestDateTimeToApplicationNoValue(t *testing.T) {
	dt := newDateTime(time.UTC)

	for _, in := range []any{nil, (*string)(nil), "", "0000-00-00 00:00:00", "0000-00-00", []byte("0000-00-00 00:00:00")} {
		v, err := dt.ToApplication(in, nil)
		require.NoError(t, err)
		assert.Nil(t, v)
	}
}

func TestDateTimeToApplicationMalformed(t *testing.T) {
	dt := newDateTime(time.UTC)

	_, err := dt.ToApplication("garbage", nil)
	require.Error(t, err)

	_, err = dt.ToApplication(1.5, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbtype.ErrInvalidInput))
}

func TestDateTimeTimezoneNames(t *testing.T) {
	dt := dbtype.NewDateTimeType("datetime")

	require.NoError(t, dt.SetDatabaseTimezoneName("UTC"))
	require.NoError(t, dt.SetUserTimezoneName("America/New_York"))
	require.NoError(t, dt.SetApplicationTimezoneName("Europe/Berlin"))
	assert.Equal(t, "UTC", dt.DatabaseTimezone().String())
	assert.Equal(t, "America/New_York", dt.UserTimezone().String())
	assert.Equal(t, "Europe/Berlin", dt.ApplicationTimezone().String())

	v, err := dt.ToApplication("2024-01-05 10:00:00", nil)
	require.NoError(t, err)
	assert.Equal(t, 11, v.(time.Time).Hour())

	require.NoError(t, dt.SetDatabaseTimezoneName(""))
	assert.Nil(t, dt.DatabaseTimezone())

	err = dt.SetUserTimezoneName("Not/AZone")
	var convErr *dbtype.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "datetime", convErr.Type)
	assert.Equal(t, "Not/AZone", convErr.Value)
	assert.Equal(t, "America/New_York", dt.UserTimezone().String())
}

func TestDateTimeKeepDatabaseTimezone(t *testing.T) {
	dt := newDateTime(utcPlus2).SetDatabaseTimezone(utcMinus5).SetKeepDatabaseTimezone(true)

	v, err := dt.ToApplication("2024-01-05 10:00:00", nil)
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 10, 0, 0, 0, utcMinus5), v)
}

func TestDateTimeUnsetDatabaseTimezoneUsesApplication(t *testing.T) {
	dt := newDateTime(utcPlus2)

	v, err := dt.ToApplication("2024-01-05 10:00:00", nil)
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 10, 0, 0, 0, utcPlus2), v)
}

func TestDateTimeManyToApplication(t *testing.T) {
	dt := newDateTime(time.UTC).SetDatabaseTimezone(time.UTC)

	values := map[string]any{
		"created": "2024-01-05 10:00:00",
		"deleted": "0000-00-00 00:00:00",
		"name":    "not a date",
	}

	out, err := dt.ManyToApplication(values, []string{"created", "deleted", "missing"}, nil)
	require.NoError(t, err)

	requireSameTime(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), out["created"])
	assert.Nil(t, out["deleted"])
	assert.Contains(t, out, "deleted")
	assert.Equal(t, "not a date", out["name"])
	assert.NotContains(t, out, "missing")

	values = map[string]any{"created": "2024-01-05 10:00:00", "name": "not a date"}
	_, err = dt.ManyToApplication(values, []string{"created", "name"}, nil)
	require.Error(t, err)
	assert.Equal(t, map[string]any{"created": "2024-01-05 10:00:00", "name": "not a date"}, values)
}

func TestDateTimeToStorage(t *testing.T) {
	dt := newDateTime(utcPlus2).SetDatabaseTimezone(time.UTC)

	v, err := dt.ToStorage(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = dt.ToStorage("already stored", nil)
	require.NoError(t, err)
	assert.Equal(t, "already stored", v)

	v, err = dt.ToStorage(time.Date(2024, 1, 5, 12, 0, 0, 0, utcPlus2), nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05 10:00:00", v)

	v, err = dt.ToStorage(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01 00:00:00", v)

	_, err = dt.ToStorage(1.5, nil)
	require.Error(t, err)
}

func TestDateTimeToStorageWithoutDatabaseTimezone(t *testing.T) {
	dt := newDateTime(utcPlus2)

	v, err := dt.ToStorage(time.Date(2024, 1, 5, 12, 0, 0, 0, utcMinus5), nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05 12:00:00", v)

	v, err = dt.ToStorage(int64(0), nil)
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01 00:00:00", v)

	in := time.Date(2024, 1, 5, 12, 0, 0, 0, utcMinus5)
	v, err = dt.ToStorage(&in, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05 12:00:00", v)
}

func TestDateTimeRoundTrip(t *testing.T) {
	dt := newDateTime(utcPlus2).SetDatabaseTimezone(utcMinus5)

	for _, in := range []time.Time{
		time.Date(2024, 1, 5, 12, 30, 45, 0, utcPlus2),
		time.Date(1999, 12, 31, 23, 59, 59, 0, utcPlus2),
		time.Date(2038, 1, 19, 3, 14, 8, 0, utcPlus2),
		time.Date(1970, 1, 1, 0, 0, 0, 0, utcPlus2),
	} {
		stored, err := dt.ToStorage(in, nil)
		require.NoError(t, err)

		out, err := dt.ToApplication(stored, nil)
		require.NoError(t, err)
		requireSameTime(t, in, out)
	}
}

func TestDateTimeToParameterKind(t *testing.T) {
	dt := newDateTime(time.UTC)

	assert.Equal(t, dbtype.ParamText, dt.ToParameterKind(time.Now(), nil))
	assert.Equal(t, dbtype.ParamText, dt.ToParameterKind(nil, dbtype.DriverInfo{Name: "sqlite"}))
	assert.Equal(t, dbtype.ParamText, dt.ToParameterKind(42, nil))
}

func TestDateTimeIdentity(t *testing.T) {
	dt := dbtype.NewDateTimeType("timestamp")

	assert.Equal(t, "timestamp", dt.Name())
	assert.Equal(t, "", dt.BaseType())
	assert.Nil(t, dt.NewID())
	assert.Equal(t, time.Local, dt.ApplicationTimezone())
	assert.Nil(t, dt.DatabaseTimezone())
	assert.Nil(t, dt.UserTimezone())
	assert.Equal(t, dbtype.DateTimeStorageFormat, dt.StorageFormat())
}

func TestDateTimeLogsSwallowedParseFailures(t *testing.T) {
	var messages []string
	var data []map[string]any
	logger := dbtype.LoggerFunc(func(ctx context.Context, level dbtype.LogLevel, msg string, d map[string]any) {
		messages = append(messages, level.String()+" "+msg)
		data = append(data, d)
	})

	dt := newDateTime(time.UTC).SetLogger(logger, dbtype.LogLevelDebug)

	v, err := dt.Marshal(dbtype.Text("tomorrow"))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.Equal(t, []string{"debug marshal: no format matched"}, messages)
	assert.Equal(t, "tomorrow", data[0]["value"])

	quiet := newDateTime(time.UTC).SetLogger(logger, dbtype.LogLevelInfo)
	_, err = quiet.Marshal(dbtype.Text("tomorrow"))
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestDateType(t *testing.T) {
	d := dbtype.NewDateType("date").SetApplicationTimezone(time.UTC).SetDatabaseTimezone(time.UTC)

	assert.Equal(t, "date", d.Name())
	assert.Equal(t, "datetime", d.BaseType())

	v, err := d.ToApplication("2024-01-05", nil)
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), v)

	v, err = d.ToApplication("2024-01-05 17:45:00", nil)
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), v)

	v, err = d.ToStorage(time.Date(2024, 1, 5, 17, 45, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", v)

	v, err = d.Marshal(dbtype.Text("2024-01-05"))
	require.NoError(t, err)
	requireSameTime(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), v)
}
