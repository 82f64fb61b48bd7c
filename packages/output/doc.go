// Package output renders run results.
//
//   - Console: colored terminal output
//   - JSON: one machine-readable document, written on Flush
package output
