// Package dbtype converts values between their application and database
// representations.
/*
The primary type is the Converter interface. A Converter moves a value into a form a
database accepts (ToStorage), back out of it (ToApplication), reports how the value is
bound as a prepared statement parameter (ToParameterKind) and turns loosely typed
request data into an application value (Marshal).

Type Maps and Registries

A TypeMap records, for one query, which converter type applies to each column. Columns
are identified by name (Col) or by position (Pos). Default mappings can be replaced or
added to; single-use overrides win over defaults.

A Registry maps converter type names to converters. NewRegistry registers the datetime,
date, text, uuid and decimal converters. Registry.ForColumn resolves the converter of a
column through a TypeMap.

	tm := dbtype.NewTypeMap(dbtype.TypesByName(map[string]string{"created": "datetime"}))
	c, ok, err := registry.ForColumn(tm, dbtype.Col("created"))

Date and Time

DateTimeType reconciles three time zones. Stored strings are in the database time zone,
marshalled strings without an offset are in the user time zone and every value it
returns is in the application time zone. Marshal accepts time.Time, Unix seconds as an
integer or a string of digits, strings in any of the marshal formats, locale formatted
strings when the locale parser is enabled and separate year, month, day, hour, minute,
second, microsecond, meridian and timezone fields.

Marshal treats blank, absent and boolean input and strings no marshal format accepts as
"no value" and returns nil without an error. Only the locale parser reports malformed
strings as a *ConversionError.

Marshal Input

Input is a tagged variant over the shapes request data can take. Build it with Absent,
Bool, Time, Int, Text and Fields, or classify a dynamic value with InputOf.

Logging

Converters and registries log through the Logger interface. Adapters for common logging
packages are in the log directory.

database/sql

The stdlib package binds a Converter to the database/sql Valuer and Scanner interfaces.
*/
package dbtype
