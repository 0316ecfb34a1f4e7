// Package design computes biquad coefficients from filter specifications
// using the RBJ audio EQ cookbook formulas.
package design
