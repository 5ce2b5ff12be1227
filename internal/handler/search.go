package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"uniride/internal/service"
)

// parseSearchQuery builds a trip search from query parameters. The route
// corners are required; date narrows the departure window to one day and an
// optional time pushes the window start later inside that day.
func parseSearchQuery(c *gin.Context) (service.SearchRequest, error) {
	var req service.SearchRequest

	coords := []struct {
		name string
		dst  *float64
	}{
		{"fromLat", &req.FromLat},
		{"fromLng", &req.FromLng},
		{"toLat", &req.ToLat},
		{"toLng", &req.ToLng},
	}
	for _, q := range coords {
		raw := c.Query(q.name)
		if raw == "" {
			return req, fmt.Errorf("missing query parameter %s", q.name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid query parameter %s", q.name)
		}
		*q.dst = v
	}

	date := c.Query("date")
	if date == "" {
		return req, fmt.Errorf("missing query parameter date")
	}
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return req, fmt.Errorf("invalid query parameter date")
	}

	req.WindowStart = day
	req.WindowEnd = day.AddDate(0, 0, 1)

	if hm := c.Query("time"); hm != "" {
		t, err := time.Parse("15:04", hm)
		if err != nil {
			return req, fmt.Errorf("invalid query parameter time")
		}
		req.WindowStart = day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}

	if raw := c.Query("radiusKm"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return req, fmt.Errorf("invalid query parameter radiusKm")
		}
		req.RadiusKm = v
	}

	return req, nil
}
