package commands

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/cli/ui"
)

// Set with -ldflags "-X" at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionInfo is printed by the version command.
type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func currentVersion() versionInfo {
	v := versionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if v.Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v.Version = info.Main.Version
		}
	}
	return v
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := currentVersion()
			if ui.GlobalFormatter.IsJSON() {
				return ui.GlobalFormatter.Output(v)
			}

			ui.OutputLine("amber %s", v.Version)
			ui.OutputLine("  commit:   %s", v.GitCommit)
			ui.OutputLine("  built:    %s", v.BuildDate)
			ui.OutputLine("  go:       %s", v.GoVersion)
			ui.OutputLine("  platform: %s", v.Platform)
			return nil
		},
	}
}
