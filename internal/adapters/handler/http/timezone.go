package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/dayrise-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

const timezoneHeader = "X-Timezone"

// resolveLocation picks the calendar for a request: the tz query parameter,
// then the X-Timezone header, then the caller's stored timezone, then the
// server default. An explicit name that does not load is an error.
func resolveLocation(c *gin.Context, fallback string) (*time.Location, error) {
	name := strings.TrimSpace(c.Query("tz"))
	if name == "" {
		name = strings.TrimSpace(c.GetHeader(timezoneHeader))
	}
	if name == "" {
		name = middleware.GetTimezone(c)
	}
	if name == "" {
		name = fallback
	}
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, domain.ErrInvalidTimezone
	}
	return loc, nil
}
