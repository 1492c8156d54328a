// Package types defines the entity structs, typed configuration shapes,
// query DTOs, and standard error values for the lepidoptera work-item store.
package types
