// Package version holds the release version reported by the CLI and the MCP
// implementation info.
package version

// Version is the biomcp release version.
const Version = "0.6.0"
