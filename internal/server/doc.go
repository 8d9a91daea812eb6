// Package server wires and runs the sync daemon's long-lived components.
//
// It orchestrates the control API's HTTP server and the sync engine as one
// unit: both start together, and a stop signal shuts the engine down before
// closing the listener so an in-flight run completes.
package server
