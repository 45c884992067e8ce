package cli

import "github.com/iudanet/fitsync/internal/client/iocli"

// BuildInfo version information set via ldflags during build
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

func printVersion(io iocli.IO, info BuildInfo) {
	io.Printf("FitSync Client\n")
	io.Printf("Version:    %s\n", info.Version)
	io.Printf("Build Date: %s\n", info.BuildDate)
	io.Printf("Git Commit: %s\n", info.GitCommit)
}
