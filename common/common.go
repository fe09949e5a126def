// Package common holds process-wide helpers shared by every command: build
// metadata and structured logger setup.
package common

var (
	// PackageName is used as the default "service" tag in logs.
	PackageName = "vc-storage-client"

	// Version is overridden at build time with -ldflags "-X ...common.Version=..."
	Version = "dev"
)
