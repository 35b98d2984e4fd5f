// Package anynil normalizes the many shapes of nil that loosely typed input can take.
package anynil

import "reflect"

// Is returns true if value is any type of nil. e.g. nil, (*time.Time)(nil) or []byte(nil).
func Is(value any) bool {
	if value == nil {
		return true
	}

	refVal := reflect.ValueOf(value)
	switch refVal.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Slice:
		return refVal.IsNil()
	default:
		return false
	}
}

// Normalize converts typed nils into untyped nil. Other values are returned unmodified.
func Normalize(v any) any {
	if Is(v) {
		return nil
	}
	return v
}

// Deref follows pointers until it reaches a non-pointer value. It returns nil if any
// pointer along the way is nil.
func Deref(v any) any {
	for {
		if Is(v) {
			return nil
		}

		refVal := reflect.ValueOf(v)
		if refVal.Kind() != reflect.Ptr {
			return v
		}
		v = refVal.Elem().Interface()
	}
}
