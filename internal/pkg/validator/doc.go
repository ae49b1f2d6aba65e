// Package validator wraps go-playground/validator v10 with the campus signup
// rules and English translations. Validation is pure and side-effect free, so
// it is safe to run on every keystroke.
package validator
