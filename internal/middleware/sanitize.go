package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizedBody bounds how much of a request body the sanitizer will
// buffer. Larger bodies are rejected outright.
const maxSanitizedBody = 1 << 20

// Sanitize strips HTML/script content from string values in JSON request
// bodies. Customer-entered text (order notes, names, addresses) is
// rendered in back-office screens, so it is cleaned at the edge rather
// than trusting every consumer to escape it.
func Sanitize() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()

	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		if ct := c.ContentType(); ct != "application/json" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSanitizedBody+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
			c.Abort()
			return
		}
		if len(body) > maxSanitizedBody {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			c.Abort()
			return
		}

		if len(bytes.TrimSpace(body)) > 0 {
			var payload interface{}
			if err := json.Unmarshal(body, &payload); err == nil {
				if cleaned, err := json.Marshal(sanitizeValue(policy, payload)); err == nil {
					body = cleaned
				}
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Request.ContentLength = int64(len(body))

		c.Next()
	}
}

// sanitizeValue walks a decoded JSON value and sanitizes every string
func sanitizeValue(policy *bluemonday.Policy, v interface{}) interface{} {
	switch value := v.(type) {
	case string:
		return policy.Sanitize(value)
	case map[string]interface{}:
		for k, item := range value {
			value[k] = sanitizeValue(policy, item)
		}
		return value
	case []interface{}:
		for i, item := range value {
			value[i] = sanitizeValue(policy, item)
		}
		return value
	default:
		return v
	}
}
