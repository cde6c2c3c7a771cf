// Package prediction computes study-duration suggestions. The Engine interface
// leaves room for a model-backed implementation; FormulaEngine is the fixed
// grade/score formula used today.
package prediction
