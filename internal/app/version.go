package app

const ServiceName = "zignasa"

// Set via -ldflags during build:
//
//	go build -ldflags="-X 'zignasa/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
