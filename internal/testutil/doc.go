// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing raw messages, chunks and transport-shaped
// chunk streams. They are not intended for production usage.
package testutil
