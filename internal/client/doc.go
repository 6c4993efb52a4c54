// Package client is a typed HTTP client for the task API. The CLI uses it to
// talk to a running server.
package client
