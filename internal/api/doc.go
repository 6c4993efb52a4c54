// Package api handles incoming HTTP requests for the task endpoints: request
// decoding and validation, error mapping, and response formatting. It adapts
// HTTP concerns to service.TaskService operations.
package api
