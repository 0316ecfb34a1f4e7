// Package biquad provides the second-order IIR section used by the signal
// graph's filter nodes.
//
// A [Section] implements Direct Form II Transposed processing for the
// transfer function given by its [Coefficients]. The coefficients may be
// replaced between blocks; the delay state is kept, so a modulated cutoff
// does not click.
//
// Coefficient design lives in dsp/filter/design.
package biquad
