// Package clock provides an injectable time source so components that count
// down or expire things can be tested without sleeping.
package clock
