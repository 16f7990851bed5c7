// Package logx wraps zerolog with a small field-based API.
//
// Components receive a Logger by value and derive scoped loggers with
// With or Component. Use Nop in tests.
package logx
