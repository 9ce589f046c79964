// Package cmd holds cfgtree's build metadata. Release builds set it with
//
//	go build -ldflags "-X github.com/thoreinstein/cfgtree/cmd.Version=v1.2.0 \
//		-X github.com/thoreinstein/cfgtree/cmd.Commit=$(git rev-parse --short HEAD) \
//		-X github.com/thoreinstein/cfgtree/cmd.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Version is also recorded in every backup manifest.
package cmd

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
