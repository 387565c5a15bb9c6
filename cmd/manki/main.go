// Command manki is the command-documentation knowledge base CLI.
//
// It learns commands from their --help and man output, imports tldr pages,
// answers ranked full-text queries in English and Chinese, and serves the
// knowledge base over a JSON HTTP API.
//
// Usage:
//
//	manki learn tar
//	manki search compress archive
//	manki serve --port 3030
package main

import "github.com/mankihq/manki/internal/commands"

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	commands.SetVersion(version)
	commands.Execute()
}
