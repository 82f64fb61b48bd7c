// Package capture extracts values from responses so later requests can use them
// as {{name}} or {{request.name}} placeholders.
package capture
