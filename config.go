package dbtype

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the date and time converters of an application.
// It is usually read from YAML with ParseConfig or LoadConfig.
//
//	database_timezone: UTC
//	user_timezone: Europe/Berlin
//	application_timezone: Europe/Berlin
//	locale: de-DE
//	locale_parser: true
//	date_style: medium
//	log_level: debug
type Config struct {
	// DatabaseTimezone is the IANA name of the time zone of stored values. Empty means
	// the application time zone.
	DatabaseTimezone string `yaml:"database_timezone"`

	// UserTimezone is the IANA name of the time zone of marshalled strings without an
	// offset. Empty means the application time zone.
	UserTimezone string `yaml:"user_timezone"`

	// ApplicationTimezone is the IANA name of the time zone of returned values. Empty
	// means time.Local.
	ApplicationTimezone string `yaml:"application_timezone"`

	KeepDatabaseTimezone bool `yaml:"keep_database_timezone"`

	// Locale is a BCP 47 language tag used by the locale parser.
	Locale       string `yaml:"locale"`
	LocaleParser bool   `yaml:"locale_parser"`

	// LocaleLayout overrides DateStyle and TimeStyle with a time package layout.
	LocaleLayout string `yaml:"locale_layout"`
	DateStyle    string `yaml:"date_style"`
	TimeStyle    string `yaml:"time_style"`

	// MarshalFormats replaces the default marshal formats of the datetime converter.
	MarshalFormats []string `yaml:"marshal_formats"`

	// LogLevel is one of trace, debug, info, warn, error or none. Empty means debug.
	LogLevel string `yaml:"log_level"`

	Logger Logger `yaml:"-"`
}

// ParseConfig parses YAML into a Config and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return ParseConfig(data)
}

// Validate checks that every name in c can be resolved.
func (c *Config) Validate() error {
	for field, name := range map[string]string{
		"database_timezone":    c.DatabaseTimezone,
		"user_timezone":        c.UserTimezone,
		"application_timezone": c.ApplicationTimezone,
	} {
		if _, err := loadLocation(name); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}

	if _, err := c.tag(); err != nil {
		return fmt.Errorf("locale: %w", err)
	}
	if _, err := c.localeFormat(); err != nil {
		return err
	}
	if _, err := c.logLevel(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	return nil
}

// NewDateTimeType builds a datetime converter from c.
func (c *Config) NewDateTimeType(name string) (*DateTimeType, error) {
	dt := NewDateTimeType(name)
	if len(c.MarshalFormats) > 0 {
		dt.SetMarshalFormats(c.MarshalFormats)
	}
	return dt, c.configure(dt)
}

// NewDateType builds a date converter from c. MarshalFormats does not apply to it.
func (c *Config) NewDateType(name string) (*DateTimeType, error) {
	dt := NewDateType(name)
	return dt, c.configure(dt)
}

// Apply replaces the datetime and date converters of r with ones built from c.
func (c *Config) Apply(r *Registry) error {
	dateTime, err := c.NewDateTimeType(DateTimeTypeName)
	if err != nil {
		return err
	}
	date, err := c.NewDateType(DateTypeName)
	if err != nil {
		return err
	}

	r.Set(DateTimeTypeName, dateTime)
	r.Set(DateTypeName, date)

	if c.Logger != nil {
		level, _ := c.logLevel()
		r.SetLogger(c.Logger, level)
	}

	return nil
}

func (c *Config) configure(dt *DateTimeType) error {
	dbLoc, err := loadLocation(c.DatabaseTimezone)
	if err != nil {
		return fmt.Errorf("database_timezone: %w", err)
	}
	userLoc, err := loadLocation(c.UserTimezone)
	if err != nil {
		return fmt.Errorf("user_timezone: %w", err)
	}
	appLoc, err := loadLocation(c.ApplicationTimezone)
	if err != nil {
		return fmt.Errorf("application_timezone: %w", err)
	}

	tag, err := c.tag()
	if err != nil {
		return fmt.Errorf("locale: %w", err)
	}
	format, err := c.localeFormat()
	if err != nil {
		return err
	}
	level, err := c.logLevel()
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if lt, ok := dt.factory.(LocaleTimes); ok {
		lt.Tag = tag
		dt.factory = lt
	}

	dt.SetDatabaseTimezone(dbLoc).
		SetUserTimezone(userLoc).
		SetApplicationTimezone(appLoc).
		SetKeepDatabaseTimezone(c.KeepDatabaseTimezone).
		SetLocaleFormat(format)

	if c.Logger != nil {
		dt.SetLogger(c.Logger, level)
	}

	return dt.UseLocaleParser(c.LocaleParser)
}

func (c *Config) tag() (language.Tag, error) {
	if c.Locale == "" {
		return language.Und, nil
	}
	return language.Parse(c.Locale)
}

func (c *Config) localeFormat() (LocaleFormat, error) {
	dateStyle, err := parseStyle(c.DateStyle)
	if err != nil {
		return LocaleFormat{}, fmt.Errorf("date_style: %w", err)
	}
	timeStyle, err := parseStyle(c.TimeStyle)
	if err != nil {
		return LocaleFormat{}, fmt.Errorf("time_style: %w", err)
	}
	return LocaleFormat{DateStyle: dateStyle, TimeStyle: timeStyle, Layout: c.LocaleLayout}, nil
}

func (c *Config) logLevel() (LogLevel, error) {
	if c.LogLevel == "" {
		return LogLevelDebug, nil
	}
	return LogLevelFromString(c.LogLevel)
}

func parseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "", "short":
		return StyleShort, nil
	case "medium":
		return StyleMedium, nil
	case "none":
		return StyleNone, nil
	}
	return 0, fmt.Errorf("invalid style %q", s)
}

// loadLocation resolves an IANA time zone name. An empty name is nil.
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, conversionError("", name, err)
	}
	return loc, nil
}
