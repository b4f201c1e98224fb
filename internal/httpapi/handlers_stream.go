package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goa.design/hierarchical-agents/internal/eventbus"
	"goa.design/hierarchical-agents/internal/ids"
)

// streamExecution handles GET /api/v1/executions/{execution_id}/stream, an
// SSE feed of the buffered-then-live events for one execution, per
// spec.md §6.
func (s *Server) streamExecution(c *gin.Context) {
	executionID := c.Param("execution_id")
	if !ids.ValidExecutionID(executionID) {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "malformed execution id")
		return
	}
	if state, err := s.store.Get(c.Request.Context(), executionID); err != nil || state == nil {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "unknown execution id")
		return
	}

	sub, err := s.bus.Subscribe(executionID)
	if err != nil {
		failFromError(c, err)
		return
	}
	defer s.bus.Unsubscribe(sub.ID())

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Status(http.StatusOK)

	flusher, canFlush := c.Writer.(http.Flusher)
	ctx := c.Request.Context()

	for {
		event, open, err := sub.Next(ctx)
		if err != nil {
			c.Writer.WriteString(eventbus.FormatErrorFrame(err.Error()))
			if canFlush {
				flusher.Flush()
			}
			return
		}
		if !open {
			return
		}

		frame, err := eventbus.FormatFrame(event)
		if err != nil {
			c.Writer.WriteString(eventbus.FormatErrorFrame(err.Error()))
			if canFlush {
				flusher.Flush()
			}
			return
		}
		c.Writer.WriteString(frame)
		if canFlush {
			flusher.Flush()
		}

		if event.EventType == "execution_completed" {
			return
		}
	}
}
