// Package app assembles the application: configuration, logging,
// telemetry, the feed loader, the services and the chi router, plus server
// lifecycle with graceful shutdown and the background feed refresh loop.
package app
