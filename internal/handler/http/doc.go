// Package http implements the local control API of the sync daemon.
//
// The host application drives the engine through it: querying sync status and
// progress, triggering manual and full syncs, and reporting app lifecycle
// transitions. Request tracing and access logging are handled here before
// requests are delegated to the sync engine.
package http
