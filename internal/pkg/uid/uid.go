// Package uid provides string identifier generators for correlation and
// request IDs.
package uid

// StringID generates opaque string identifiers.
type StringID interface {
	Generate() string
}
