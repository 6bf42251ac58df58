package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"foodsense/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without a
// time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List predictions
// @Description  Filter stored classifications by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         predictions
// @Produce      json
// @Param        from   query   string  false  "Start of range"  example(2026-08-01)
// @Param        to     query   string  false  "End of range; date-only treated as end of day"  example(2026-08-31)
// @Param        label  query   string  false  "Quality label"  Enums(FRESH,DEGRADED,ERROR,UNKNOWN)
// @Success      200    {object}  map[string]interface{}  "count, predictions"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/predictions [get]
// @Security     BearerAuth
func (h *Handler) listPredictions(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from  time.Time
		to    time.Time
		label = strings.ToUpper(strings.TrimSpace(c.Query("label")))
		err   error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		// date-only "to" means the whole day
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	recs, err := h.services.PredictionLog.List(ctx, service.HistoryFilter{
		From:  from,
		To:    to,
		Label: label,
	})
	if err != nil {
		if h.log != nil {
			h.log.Errorw("predictions_list_failed", "err", err, "from", from, "to", to, "label", label)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load predictions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(recs),
		"predictions": recs,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}
