package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"riskrag/internal/rag"
)

// Handler serves the ask and browse endpoints.
type Handler struct {
	Pipeline *rag.Pipeline
	Logger   *log.Logger
}

// AskRequest is the /preguntar payload. Mode optionally forces a strategy
// for this request without changing the process default.
type AskRequest struct {
	Texto string `json:"texto"`
	Mode  string `json:"mode,omitempty"`
}

// SearchResponse wraps the browse results.
type SearchResponse struct {
	Retrieved []rag.RetrievedRecord `json:"retrieved"`
}

func (h *Handler) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"mensaje": "API de RAG de Riesgos activa",
		"mode":    h.Pipeline.Mode(),
	})
}

func (h *Handler) ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	qid := uuid.NewString()[:8]
	start := time.Now()
	env := h.Pipeline.Ask(c.Request().Context(), req.Texto, req.Mode)
	elapsed := time.Since(start)

	askSeconds.Observe(elapsed.Seconds())
	asksTotal.WithLabelValues(env.Mode).Inc()
	if env.GateReason != nil {
		gatesTotal.WithLabelValues(gateLabel(*env.GateReason)).Inc()
	}
	if env.UsedFallback {
		fallbacksTotal.Inc()
	}

	gr := ""
	if env.GateReason != nil {
		gr = *env.GateReason
	}
	h.Logger.Printf("qid=%s mode=%s no_evidence=%t fallback=%t gate=%q took=%s",
		qid, env.Mode, env.NoEvidence, env.UsedFallback, gr, elapsed)

	return c.JSON(http.StatusOK, env)
}

func (h *Handler) search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query parameter q")
	}
	k := 3
	if raw := c.QueryParam("k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "k must be a positive integer")
		}
		k = v
	}
	return c.JSON(http.StatusOK, SearchResponse{Retrieved: h.Pipeline.SearchRecords(q, k)})
}
