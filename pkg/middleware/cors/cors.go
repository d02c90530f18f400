package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-tracker/pkg/middleware/requestid"
)

const maxAge = "600"

var (
	allowHeaders = strings.Join([]string{"Authorization", "Content-Type", requestid.Header}, ", ")
	allowMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ", ")
)

// policy resolves the Access-Control-Allow-Origin value for a request origin.
type policy map[string]struct{}

func newPolicy(origins []string) policy {
	p := make(policy, len(origins))
	for _, origin := range origins {
		p[normalize(origin)] = struct{}{}
	}
	return p
}

// allowOrigin returns the header value, or "" when the origin is refused.
// An empty policy admits everyone.
func (p policy) allowOrigin(origin string) string {
	if len(p) == 0 {
		if origin == "" {
			return "*"
		}
		return origin
	}
	if _, ok := p[normalize(origin)]; ok && origin != "" {
		return origin
	}
	return ""
}

func normalize(origin string) string {
	return strings.TrimRight(origin, "/")
}

// New lets a browser-hosted client reach the dev server. An empty origin list
// allows every origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	p := newPolicy(allowedOrigins)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if value := p.allowOrigin(c.GetHeader("Origin")); value != "" {
			h.Set("Access-Control-Allow-Origin", value)
		}
		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Expose-Headers", requestid.Header)
		h.Set("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
