// Package predict serves the study-duration prediction endpoint.
package predict

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/studytime/api/middleware"
	coremetrics "github.com/kilianp07/studytime/core/metrics"
	"github.com/kilianp07/studytime/core/prediction"
	"github.com/kilianp07/studytime/infra/logger"
)

// Publisher receives the events produced by the handler. Publish must not
// block and returns the number of subscribers reached; eventbus.Bus satisfies
// it.
type Publisher interface {
	Publish(ev coremetrics.Event) int
}

// Handler serves POST /predict.
type Handler struct {
	engine  prediction.Engine
	decoder *Decoder
	events  Publisher
	log     logger.Logger
	now     func() time.Time
}

// NewHandler creates a Handler. events may be nil.
func NewHandler(engine prediction.Engine, events Publisher, log logger.Logger) (*Handler, error) {
	dec, err := NewDecoder()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{engine: engine, decoder: dec, events: events, log: log, now: time.Now}, nil
}

// Predict decodes the request, runs the engine and renders the suggestion.
func (h *Handler) Predict(c *gin.Context) {
	reqID := middleware.GetRequestID(c)
	req, verr := h.decoder.Decode(c)
	if verr != nil {
		h.log.Debugw("prediction rejected", map[string]any{
			"request_id": reqID,
			"fields":     verr.Fields(),
		})
		h.publish(coremetrics.RejectionEvent{RequestID: reqID, Fields: verr.Fields(), Time: h.now()})
		c.JSON(http.StatusUnprocessableEntity, verr)
		return
	}

	resp, bd := h.engine.Predict(req)
	h.publish(coremetrics.PredictionEvent{
		RequestID: reqID,
		Request:   req,
		Response:  resp,
		Breakdown: bd,
		Time:      h.now(),
	})
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) publish(ev coremetrics.Event) {
	if h.events == nil {
		return
	}
	h.events.Publish(ev)
}
