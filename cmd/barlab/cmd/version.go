package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barlab/dataset"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/rustyeddy/barlab/cmd/barlab/cmd.commit=$(git rev-parse --short HEAD) \
//	  -X github.com/rustyeddy/barlab/cmd/barlab/cmd.built=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "0.3.0"
	commit  = ""
	built   = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the barlab version, the commit it was built from and the table formats it reads and writes.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "barlab version %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", buildCommit())
		if built != "" {
			fmt.Fprintf(out, "  built:   %s\n", built)
		}
		fmt.Fprintf(out, "  go:      %s\n", runtime.Version())
		fmt.Fprintf(out, "  formats: %s\n", strings.Join(dataset.Formats, ", "))
	},
}

// buildCommit prefers the ldflags value, then the VCS stamp the go tool
// embeds in module builds.
func buildCommit() string {
	if commit != "" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				if len(s.Value) > 12 {
					return s.Value[:12]
				}
				return s.Value
			}
		}
	}
	return "unknown"
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
