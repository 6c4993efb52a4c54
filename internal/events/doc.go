// Package events provides task lifecycle events and the handlers that
// consume them.
//
// The service layer emits a TaskEvent after every successful create, update,
// and delete. Handlers run synchronously; a failing handler never undoes the
// change that produced the event.
//
// The primary components are:
//   - TaskEvent: a single task.created, task.updated or task.deleted record
//   - EventEmitter / InMemoryEventEmitter: fan-out to registered handlers
//   - AuditLogHandler: writes each event to the structured log
package events
