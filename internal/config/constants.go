package config

import "time"

// Application constants
const (
	AppName    = "Penyusutan Dashboard"
	AppVersion = "1.0.0"

	// Dashboard presentation
	DefaultPreviewRows   = 5
	DefaultTopN          = 10
	DefaultHistogramBins = 30
	DefaultRatioMin      = 0.0
	DefaultRatioMax      = 20.0
	DefaultCurrency      = "Rp"

	// Uploads
	DefaultMaxUploadBytes = 32 << 20 // 32MB
	DefaultSessionTTL     = 30 * time.Minute
	DefaultMaxSessions    = 64

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	DefaultRequestTimeout = 60 * time.Second

	// Log Settings
	DefaultLogLevel = "info"
	DefaultLogFile  = "logs/app.log"

	// API Endpoints
	APIBasePath     = "/api"
	MetricsEndpoint = "/metrics"
)
