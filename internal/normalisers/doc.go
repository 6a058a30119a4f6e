// Package normalisers provides implementations of the Normaliser interface.
// A normaliser turns a bill's raw text into the token sequence every later
// pipeline stage works on.
package normalisers
