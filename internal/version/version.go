package version

var (
	// Version is the overpass-report release version
	Version = "dev"
	// GitSHA is the source revision the binaries were built from
	GitSHA = "unknown"
	// BuildTime is when the binaries were built
	BuildTime = "unknown"
)
