// Package service contains the application use cases of the API: user
// registration and login, project creation and listing, the task lifecycle,
// and the chat assistant.
//
// Services receive store interfaces and a store.Transactor through their
// constructors and never depend on a concrete database. Multi-step writes run
// inside a transaction. Task writes publish events through an
// events.EventEmitter so project progress is recomputed by its subscriber.
//
// Errors:
//   - store sentinels (store.ErrNotFound, store.ErrDuplicate families) and
//     domain.ErrValidation errors are returned unwrapped so the API layer can
//     map them with errors.Is
//   - everything else is wrapped in a *ServiceError naming the operation
package service
