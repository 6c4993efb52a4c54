// Package service contains the task use cases. It sits between the HTTP
// layer and the store: it picks which store query answers a list request,
// computes statistics against an injectable clock, and emits lifecycle
// events after every successful mutation.
//
// Dependencies arrive through constructor injection. The service depends on
// the store.TaskStore interface, never on a concrete backend.
package service
