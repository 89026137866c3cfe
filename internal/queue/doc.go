// Package queue persists clip jobs in SQLite so batch runs survive
// interruption and their outcomes stay inspectable afterwards. The store
// serializes writers with busy retries and keeps a schema version table to
// detect incompatible databases.
package queue
