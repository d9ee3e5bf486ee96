// Package resource bounds the shared resources used while loading
// databases: in-memory buffer bytes, concurrent workers and read bandwidth
// from remote or non-mapped sources.
package resource
