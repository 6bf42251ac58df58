package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errClassify       = "failed to classify reading"
	errLastPrediction = "failed to load last prediction"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for the predict endpoint.
type predictRequest struct {
	Sensors []float64 `json:"sensors" binding:"required"`
}

// PredictRequest is an exported model for Swagger docs of the predict payload.
type PredictRequest struct {
	// Normalized sensor vector, one value in [0,1] per channel
	Sensors []float64 `json:"sensors" example:"0.05,0.1,0.02,0.07"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Classify a sensor reading
// @Description  Accepts the device's normalized sensor vector and returns the class index and confidence
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        body  body   PredictRequest  true  "Sensor vector"
// @Success      200   {object}  map[string]interface{}  "prediction, confidence"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/predict [post]
func (h *Handler) predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	rec, err := h.services.Classifier.Classify(c.Request.Context(), req.Sensors)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errClassify, "classify_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prediction": rec.Label.Class(),
		"confidence": rec.Confidence,
	})
}

// @Summary      Last prediction
// @Description  Latest stored classification, shaped for the display-only dashboard
// @Tags         predictions
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "success, data"
// @Failure      500  {object}  map[string]string
// @Router       /api/last-prediction [get]
func (h *Handler) lastPrediction(c *gin.Context) {
	rec, err := h.services.PredictionLog.Latest(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLastPrediction, "last_prediction_failed", err)
		return
	}
	if rec.ID == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"prediction_label": string(rec.Label),
			"confidence":       rec.Confidence,
			"sensor_data":      rec.SensorData,
			"datetime":         rec.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}
