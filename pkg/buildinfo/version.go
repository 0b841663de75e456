// Package buildinfo holds the version stamped into the binary at build time:
//
//	go build -ldflags "-X github.com/htfab/tt-multiplexer/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/htfab/tt-multiplexer/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/htfab/tt-multiplexer/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/ttlayout
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
