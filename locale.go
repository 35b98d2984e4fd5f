package dbtype

import (
	"time"

	"golang.org/x/text/language"
)

// TimeFactory constructs the time values produced by the date and time converters.
// DateTimeType selects a TimeFactory once, at construction.
type TimeFactory interface {
	// Name identifies the factory in errors and logs.
	Name() string

	// FromUnix returns the instant sec seconds after the Unix epoch in loc.
	FromUnix(sec int64, loc *time.Location) time.Time

	// Parse parses value with layout. Values without an explicit offset are
	// interpreted in loc.
	Parse(layout, value string, loc *time.Location) (time.Time, error)
}

// LocaleParser is implemented by TimeFactories that understand locale formatted
// strings.
type LocaleParser interface {
	ParseLocale(value string, format LocaleFormat, loc *time.Location) (time.Time, error)
}

// Style selects how much detail a locale formatted date or time carries.
type Style int8

const (
	StyleShort Style = iota
	StyleMedium
	StyleNone
)

// LocaleFormat describes the locale formatted strings accepted by a LocaleParser. If
// Layout is set it is used as is; otherwise the date and time layouts of the parser's
// locale are chosen by DateStyle and TimeStyle. The zero value is short date and short
// time.
type LocaleFormat struct {
	DateStyle Style
	TimeStyle Style
	Layout    string
}

// StdTimes is the plain TimeFactory. It has no locale support.
type StdTimes struct{}

func (StdTimes) Name() string {
	return "time"
}

func (StdTimes) FromUnix(sec int64, loc *time.Location) time.Time {
	return time.Unix(sec, 0).In(orLocal(loc))
}

func (StdTimes) Parse(layout, value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(layout, value, orLocal(loc))
}

// LocaleTimes is a TimeFactory that also parses strings written the way people in the
// locale identified by Tag write dates and times.
type LocaleTimes struct {
	StdTimes
	Tag language.Tag
}

func (lt LocaleTimes) Name() string {
	return "locale:" + lt.Tag.String()
}

func (lt LocaleTimes) ParseLocale(value string, format LocaleFormat, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(lt.Layout(format), value, orLocal(loc))
}

// Layout returns the time package layout that format resolves to in the locale of lt.
func (lt LocaleTimes) Layout(format LocaleFormat) string {
	if format.Layout != "" {
		return format.Layout
	}

	_, idx, _ := localeMatcher.Match(lt.Tag)
	ll := localeLayoutTable[idx]

	date := ll.date[format.DateStyle]
	clock := ll.time[format.TimeStyle]
	switch {
	case date == "":
		return clock
	case clock == "":
		return date
	}
	return date + ll.sep + clock
}

type localeLayouts struct {
	// indexed by Style
	date [3]string
	time [3]string
	sep  string
}

var localeTags = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
	language.Japanese,
}

var localeMatcher = language.NewMatcher(localeTags)

// localeLayoutTable is parallel to localeTags.
var localeLayoutTable = []localeLayouts{
	{date: [3]string{"1/2/06", "Jan 2, 2006"}, time: [3]string{"3:04 PM", "3:04:05 PM"}, sep: ", "},
	{date: [3]string{"02/01/2006", "2 Jan 2006"}, time: [3]string{"15:04", "15:04:05"}, sep: ", "},
	{date: [3]string{"02.01.06", "02.01.2006"}, time: [3]string{"15:04", "15:04:05"}, sep: ", "},
	{date: [3]string{"02/01/2006", "02/01/2006"}, time: [3]string{"15:04", "15:04:05"}, sep: " "},
	{date: [3]string{"2/1/06", "02/01/2006"}, time: [3]string{"15:04", "15:04:05"}, sep: ", "},
	{date: [3]string{"2006/01/02", "2006/01/02"}, time: [3]string{"15:04", "15:04:05"}, sep: " "},
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
