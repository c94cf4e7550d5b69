// Package distribution turns a project description and its roster into
// assigned tasks.
//
// The Engine asks a completion backend for a batch of task proposals, parses
// the answer leniently, resolves proposed assignees against the roster and
// persists the result. Whenever the model is unavailable or its answer is
// unusable the deterministic fallback templates are used instead, so every
// successful distribution leaves each created task with an assignee.
//
// Distribution and progress recalculation for one project are serialized by
// ProjectLocks.
package distribution
