// Package events is a small synchronous publish/subscribe mechanism for task
// lifecycle events. Services emit an event after a successful write; handlers
// such as the progress recalculator react to it in the same request.
package events
