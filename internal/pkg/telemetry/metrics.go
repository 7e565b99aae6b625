package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Render pipeline
	MetricRenderLatency  = "render.pass_latency"
	MetricRenderCacheHit = "render.cache_hit_ratio"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricOverlaysActive = "business.overlays_active"
	MetricOverlayEdits   = "business.overlay_edits"
)
