package config

import (
	"io"
	"time"
)

// Config defines a set of methods for retrieving configuration values of
// various types. Implementations should handle retrieval and type conversion,
// providing zero-value defaults when a key is absent or malformed.
type Config interface {
	io.Closer

	// GetBool retrieves the configuration value associated with the given key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the configuration value associated with the given key as an int.
	GetInt(key string) int

	// GetInt64 retrieves the configuration value associated with the given key as an int64.
	GetInt64(key string) int64

	// GetString retrieves the configuration value associated with the given key as a string.
	GetString(key string) string

	// GetFloat64 retrieves the configuration value associated with the given key as a float64.
	GetFloat64(key string) float64

	// GetArray retrieves the configuration value associated with the given key
	// as a slice of strings. Values are stored with format <element1>,<element2>,...
	GetArray(key string) []string

	// GetMillisecond retrieves the value for key as a duration in milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond retrieves the value for key as a duration in seconds.
	GetSecond(key string) time.Duration

	// GetMinute retrieves the value for key as a duration in minutes.
	GetMinute(key string) time.Duration

	// GetHour retrieves the value for key as a duration in hours.
	GetHour(key string) time.Duration
}
