package api

// Request body limits. JSON bodies are small commands; the one large
// upload is the CSV import, which gets its own multipart budget.
const (
	MaxJSONSize   = 1 << 20  // 1MB
	MaxImportSize = 10 << 20 // 10MB
)

// sessionCookieName is the HTTP-only cookie carrying the session token.
const sessionCookieName = "quiver_session"

// Login, register and reset-password are rate limited per client IP.
// 10 requests a minute with a burst of 5 is generous for a human and
// slow for a credential stuffer.
const (
	authRatePerSecond = 10.0 / 60.0
	authRateBurst     = 5
)
