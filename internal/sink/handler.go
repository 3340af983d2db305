package sink

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitalwatch/telemetry-agent/internal/event"
	"github.com/vitalwatch/telemetry-agent/internal/transport"
)

// ingestRequest is the wire contract the agent speaks: one JSON object
// with a single ordered events array, at most 100 records per request.
type ingestRequest struct {
	Events []event.Event `json:"events" binding:"required,min=1"`
}

// errorResponse mirrors the agent-facing error shape. The agent ignores
// it either way; it exists for humans poking the sink.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ingestResponse struct {
	Accepted int    `json:"accepted"`
	Status   string `json:"status"`
}

// Handler is the sink's HTTP surface.
type Handler struct {
	store  Store
	router *gin.Engine
	log    *zap.Logger
}

// NewHandler creates the handler and registers its routes.
func NewHandler(store Store, log *zap.Logger) *Handler {
	h := &Handler{
		store:  store,
		router: gin.Default(),
		log:    log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events", h.ingestEvents)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ingestEvents handles POST /events
func (h *Handler) ingestEvents(c *gin.Context) {
	var req ingestRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid ingest request", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if len(req.Events) > transport.MaxEventsPerRequest {
		h.log.Warn("Batch over per-request ceiling",
			zap.Int("event_count", len(req.Events)))
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "batch_too_large",
			Message: "at most 100 events per request",
		})
		return
	}

	for i, e := range req.Events {
		if e.SiteID == "" || e.Kind == "" {
			h.log.Warn("Event missing envelope fields", zap.Int("index", i))
			c.JSON(http.StatusBadRequest, errorResponse{
				Error:   "validation_error",
				Message: "every event needs a kind and a site_id",
			})
			return
		}
	}

	inserted, err := h.store.InsertBatch(c.Request.Context(), req.Events)
	if err != nil {
		h.log.Error("Failed to store batch",
			zap.Error(err),
			zap.Int("event_count", len(req.Events)))
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Batch ingested",
		zap.Int("accepted", inserted),
		zap.String("site_id", req.Events[0].SiteID))

	c.JSON(http.StatusAccepted, ingestResponse{
		Accepted: inserted,
		Status:   "accepted",
	})
}
