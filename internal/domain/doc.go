// Package domain contains the core entities of TeamAI: users, projects with
// their team roster, and tasks. It holds the rules that do not depend on
// storage or transport: task status transitions, deadline arithmetic, and the
// project progress formula.
package domain
