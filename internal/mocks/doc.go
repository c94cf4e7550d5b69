// Package mocks provides shared test doubles for the store, transaction and
// completion interfaces.
//
// The store mocks keep their data in memory and behave like the Postgres
// stores for the cases services rely on. Every method can be overridden with
// the matching Fn field:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.CreateFn = func(ctx context.Context, t *domain.Task) error {
//	    return errors.New("disk full")
//	}
package mocks
