package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldPlatform  = "platform"
	FieldVideoID   = "video_id"
	FieldCacheKey  = "cache_key"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStrategy  = "strategy"
	FieldOutcome   = "outcome"

	// Media / stream fields
	FieldQuality   = "quality"
	FieldBandwidth = "bandwidth"
	FieldSegments  = "segments"
	FieldLive      = "live"

	// Network fields
	FieldURL      = "url"
	FieldTarget   = "target"
	FieldStatus   = "status"
	FieldElapsed  = "elapsed_ms"
	FieldClientIP = "client_ip"
)
