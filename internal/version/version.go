package version

// Populated at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info reports the version, commit and build date of this binary.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}
