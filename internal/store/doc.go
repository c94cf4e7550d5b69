// Package store defines the persistence interfaces for users, projects, and
// tasks, the error values every implementation returns, and the transaction
// helper services use to group writes.
package store
