package dbtype

import (
	"fmt"
	"sort"
	"sync"
)

// Names of the converters registered by NewRegistry.
const (
	DateTimeTypeName = "datetime"
	DateTypeName     = "date"
	TextTypeName     = "text"
	UUIDTypeName     = "uuid"
	DecimalTypeName  = "decimal"
)

// ConverterFunc builds the converter registered under name.
type ConverterFunc func(name string) Converter

// Registry maps converter type names to converters. Converters are built on first use
// and the same instance is returned afterwards. A Registry is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]ConverterFunc
	converters map[string]Converter
	log        levelLogger
}

// NewRegistry returns a Registry with the datetime, date, text, uuid and decimal
// converters registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories:  make(map[string]ConverterFunc, 8),
		converters: make(map[string]Converter, 8),
	}

	r.RegisterType(DateTimeTypeName, func(name string) Converter { return NewDateTimeType(name) })
	r.RegisterType(DateTypeName, func(name string) Converter { return NewDateType(name) })
	r.RegisterType(TextTypeName, func(name string) Converter { return NewTextType(name) })
	r.RegisterType(UUIDTypeName, func(name string) Converter { return NewUUIDType(name) })
	r.RegisterType(DecimalTypeName, func(name string) Converter { return NewDecimalType(name) })

	return r
}

// SetLogger attaches a logger that receives a LogLevelDebug event each time a
// converter is built.
func (r *Registry) SetLogger(logger Logger, level LogLevel) {
	r.mu.Lock()
	r.log = newLevelLogger(logger, level)
	r.mu.Unlock()
}

// RegisterType registers fn under name. A converter already built for name is
// discarded.
func (r *Registry) RegisterType(name string, fn ConverterFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = fn
	delete(r.converters, name)
}

// Set registers an already built converter under name.
func (r *Registry) Set(name string, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = func(string) Converter { return c }
	r.converters[name] = c
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Build returns the converter registered under name.
func (r *Registry) Build(name string) (Converter, error) {
	r.mu.RLock()
	c, ok := r.converters[name]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.converters[name]; ok {
		return c, nil
	}

	fn, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}

	c = fn(name)
	r.converters[name] = c
	r.log.log(LogLevelDebug, "built converter", map[string]any{"type": name, "converter": fmt.Sprintf("%T", c)})

	return c, nil
}

// Converters builds every registered converter and returns them by name.
func (r *Registry) Converters() (map[string]Converter, error) {
	names := r.Names()
	out := make(map[string]Converter, len(names))
	for _, name := range names {
		c, err := r.Build(name)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}
	return out, nil
}

// ForColumn returns the converter of the column identified by k in tm. ok is false if
// tm has no type for the column.
func (r *Registry) ForColumn(tm *TypeMap, k Key) (c Converter, ok bool, err error) {
	name, ok := tm.Type(k)
	if !ok {
		return nil, false, nil
	}

	c, err = r.Build(name)
	if err != nil {
		return nil, false, fmt.Errorf("column %s: %w", k, err)
	}
	return c, true, nil
}
