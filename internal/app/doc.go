// Package app is the application layer: it runs a complete analysis over a
// conversation, producing the serializable report the HTTP adapter and the
// downstream narrative generator consume. Handlers route all operations
// through the Service here; the engine packages stay free of logging,
// metrics, and ids.
package app
