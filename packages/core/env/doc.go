// Package env handles variables and placeholder resolution for httpcall job files.
//
// It provides functionality for:
//   - Loading .env files
//   - Placeholder interpolation using {{variable}} and {{$ENV_VAR}} syntax
//   - Built-in function evaluation (uuid, timestamp, random, etc.)
//   - Values captured from earlier responses
//   - Selecting a named environment from a job file
package env
