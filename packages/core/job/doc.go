// Package job loads YAML job files. A job file holds variables, named environments
// and a list of requests; each request converts into an http.RequestSpec.
package job
