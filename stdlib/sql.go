// Package stdlib is the compatibility layer from dbtype to database/sql.
//
// Valuer wraps an application value so that it is converted with a Converter when it
// is passed as a query argument.
//
//	dt := dbtype.NewDateTimeType("datetime").SetDatabaseTimezone(time.UTC)
//	_, err := db.Exec("insert into events(created) values (?)", stdlib.Valuer(dt, time.Now(), nil))
//
// Scanner converts a column value read by database/sql to its application
// representation.
//
//	s := stdlib.Scanner(dt, nil)
//	err := db.QueryRow("select created from events").Scan(s)
//	created := s.Value.(time.Time)
//
// ScanMap reads a whole row into a map, converting every column the TypeMap has a
// type for.
package stdlib

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/uim-go/dbtype"
)

// Valuer returns a driver.Valuer that converts v with c.ToStorage.
func Valuer(c dbtype.Converter, v any, d dbtype.Driver) driver.Valuer {
	return valuer{c: c, v: v, d: d}
}

type valuer struct {
	c dbtype.Converter
	v any
	d dbtype.Driver
}

func (v valuer) Value() (driver.Value, error) {
	stored, err := v.c.ToStorage(v.v, v.d)
	if err != nil {
		return nil, err
	}

	if !driver.IsValue(stored) {
		return nil, fmt.Errorf("%s converted %T to %T which is not a driver.Value", converterName(v.c), v.v, stored)
	}

	return stored, nil
}

// ScanValue is a sql.Scanner that converts the scanned value with a Converter. The
// converted value is stored in Value.
type ScanValue struct {
	c dbtype.Converter
	d dbtype.Driver

	Value any
}

// Scanner returns a sql.Scanner that converts scanned values with c.ToApplication.
func Scanner(c dbtype.Converter, d dbtype.Driver) *ScanValue {
	return &ScanValue{c: c, d: d}
}

// Scan implements the database/sql Scanner interface.
func (s *ScanValue) Scan(src any) error {
	if b, ok := src.([]byte); ok {
		// database/sql reuses the buffer behind src.
		src = append([]byte(nil), b...)
	}

	v, err := s.c.ToApplication(src, s.d)
	if err != nil {
		return err
	}

	s.Value = v
	return nil
}

// Args converts query arguments with the converters tm assigns to their positions.
// Arguments at positions without a type are passed through.
func Args(r *dbtype.Registry, tm *dbtype.TypeMap, d dbtype.Driver, args ...any) ([]any, error) {
	out := make([]any, len(args))
	for i, arg := range args {
		c, ok, err := r.ForColumn(tm, dbtype.Pos(i))
		if err != nil {
			return nil, err
		}
		if !ok {
			out[i] = arg
			continue
		}
		out[i] = Valuer(c, arg, d)
	}
	return out, nil
}

// ScanMap scans the current row of rows into a map keyed by column name. Columns that
// tm has a type for, by name or by position, are converted with the converter the
// registry builds for that type.
func ScanMap(rows *sql.Rows, r *dbtype.Registry, tm *dbtype.TypeMap, d dbtype.Driver) (map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(map[string]any, len(columns))
	byType := make(map[dbtype.Converter][]string)
	var order []dbtype.Converter

	for i, column := range columns {
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = append([]byte(nil), b...)
		}
		row[column] = v

		c, ok, err := r.ForColumn(tm, dbtype.Col(column))
		if err == nil && !ok {
			c, ok, err = r.ForColumn(tm, dbtype.Pos(i))
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if _, seen := byType[c]; !seen {
			order = append(order, c)
		}
		byType[c] = append(byType[c], column)
	}

	for _, c := range order {
		if _, err := dbtype.ManyToApplication(c, row, byType[c], d); err != nil {
			return nil, err
		}
	}

	return row, nil
}

func converterName(c dbtype.Converter) string {
	if name := c.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%T", c)
}
