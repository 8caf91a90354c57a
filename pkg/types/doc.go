// Package types defines the Store interface, the Todo entity, the Config
// used to open a backend, and the sentinel errors shared by every backend.
package types
