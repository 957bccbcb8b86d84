// Package httpcache holds the per-route cache policies as immutable values
// handed to the transport layer.
package httpcache

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// Policy is a Cache-Control value object.
type Policy struct {
	value string
}

// SMaxAgePublic builds a shared-cache policy: "public, s-maxage=N".
func SMaxAgePublic(d time.Duration) Policy {
	return Policy{value: fmt.Sprintf("public, s-maxage=%d", int(d.Seconds()))}
}

// NoStore forbids caching entirely. Used for the archive bundle, whose
// content changes with every latest-pointer swap.
func NoStore() Policy {
	return Policy{value: "no-store"}
}

// Apply sets the Cache-Control header on the response.
func (p Policy) Apply(c *gin.Context) {
	if p.value != "" {
		c.Header("Cache-Control", p.value)
	}
}

// Value exposes the header value, mainly for tests.
func (p Policy) Value() string { return p.value }
