// Package version provides version information for mcpbridge.
package version

// version is set at build time via ldflags.
var version = "dev"

// GetVersion returns the current mcpbridge version.
func GetVersion() string {
	return version
}
