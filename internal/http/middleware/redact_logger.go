// This file implements RedactingLogger, the access logger used in front of
// the webhook route. Updates posted by the messaging platform carry member
// names, phone numbers, and invite links, and the webhook URL itself embeds
// the bot secret, so everything request-scoped is scrubbed before it reaches
// the log stream.
//
// The logger never records request or response bodies. Query strings, header
// values, and unmatched raw paths go through pattern redaction; sensitive
// headers are masked wholesale.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures extra scrubbing for RedactingLogger.
//
// MaskHeaders lists additional header names whose values are replaced with
// "[REDACTED]" entirely. Matching is case-insensitive and merged with the
// built-in set (Authorization, Cookie, Set-Cookie).
type RedactOptions struct {
	MaskHeaders []string
}

// Patterns applied to query strings, header values, and unmatched paths.
// Order matters: tokens and UUIDs first, then invite links, then email, then
// the loose phone pattern, so the later patterns never chew on fragments of
// the earlier ones.
var (
	tokenRE  = regexp.MustCompile(`\b\d{6,}:[A-Za-z0-9_-]{30,}\b`)
	uuidRE   = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	inviteRE = regexp.MustCompile(`https://t\.me/\S+`)
	emailRE  = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE  = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

func redactValue(s string) string {
	if s == "" {
		return s
	}
	out := tokenRE.ReplaceAllString(s, "[REDACTED:token]")
	out = uuidRE.ReplaceAllString(out, "[REDACTED:id]")
	out = inviteRE.ReplaceAllString(out, "[REDACTED:invite]")
	out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
	out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
	return out
}

// RedactingLogger returns a Gin middleware that logs each request with
// sensitive values scrubbed.
//
// Method, path, query, status, response size, latency, and request headers
// are logged as structured JSON at info level, warn for 4xx, error for 5xx.
// Matched routes log the route pattern, which keeps the webhook secret path
// segment out of the logs; unmatched raw paths are pattern-redacted before
// logging.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			// No route matched; the raw path may contain a secret or an
			// invite link, so scrub it.
			path = redactValue(c.Request.URL.Path)
		}
		safeQuery := redactValue(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redactValue(strings.Join(vv, ", "))
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}
		// Set by the webhook handler once the update body is parsed.
		sender, _ := c.Get(senderIDKey)

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("sender_id", asString(sender)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
