package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersConfig defines the security-related response headers
type SecurityHeadersConfig struct {
	ContentSecurityPolicy   string
	StrictTransportSecurity string
	XContentTypeOptions     string
	XFrameOptions           string
	ReferrerPolicy          string
	PermissionsPolicy       string
}

// DefaultSecurityHeadersConfig returns a default, reasonably strict
// configuration. The CSP allows self-hosted assets only; storefronts
// serving tenant branding images should extend img-src.
func DefaultSecurityHeadersConfig() *SecurityHeadersConfig {
	return &SecurityHeadersConfig{
		ContentSecurityPolicy:   "default-src 'self'; object-src 'none'; frame-ancestors 'none'; base-uri 'self';",
		StrictTransportSecurity: "max-age=31536000; includeSubDomains",
		XContentTypeOptions:     "nosniff",
		XFrameOptions:           "DENY",
		ReferrerPolicy:          "strict-origin-when-cross-origin",
		PermissionsPolicy:       "camera=(), microphone=(), geolocation=()",
	}
}

// SecurityHeaders adds security response headers to every request
func SecurityHeaders(cfg *SecurityHeadersConfig) gin.HandlerFunc {
	if cfg == nil {
		cfg = DefaultSecurityHeadersConfig()
	}

	return func(c *gin.Context) {
		headers := c.Writer.Header()

		if cfg.ContentSecurityPolicy != "" {
			headers.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
		}
		if cfg.StrictTransportSecurity != "" {
			headers.Set("Strict-Transport-Security", cfg.StrictTransportSecurity)
		}
		if cfg.XContentTypeOptions != "" {
			headers.Set("X-Content-Type-Options", cfg.XContentTypeOptions)
		}
		if cfg.XFrameOptions != "" {
			headers.Set("X-Frame-Options", cfg.XFrameOptions)
		}
		if cfg.ReferrerPolicy != "" {
			headers.Set("Referrer-Policy", cfg.ReferrerPolicy)
		}
		if cfg.PermissionsPolicy != "" {
			headers.Set("Permissions-Policy", cfg.PermissionsPolicy)
		}

		c.Next()
	}
}
