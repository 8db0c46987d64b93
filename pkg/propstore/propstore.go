// Package propstore exposes toolkit-level metadata shared by the CLI and
// library consumers.
package propstore

// Version is the propstore toolkit version.
const Version = "0.3.0"
