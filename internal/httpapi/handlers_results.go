package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goa.design/hierarchical-agents/internal/formatter"
	"goa.design/hierarchical-agents/internal/ids"
	"goa.design/hierarchical-agents/internal/tmpl"
)

// getResults handles
// GET /api/v1/executions/{execution_id}/results?format=json|xml|markdown.
func (s *Server) getResults(c *gin.Context) {
	executionID := c.Param("execution_id")
	if !ids.ValidExecutionID(executionID) {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "malformed execution id")
		return
	}

	format := c.DefaultQuery("format", "json")
	switch format {
	case "json", "xml", "markdown":
	default:
		fail(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be one of json, xml, markdown")
		return
	}

	state, err := s.store.Get(c.Request.Context(), executionID)
	if err != nil {
		failFromError(c, err)
		return
	}
	if state == nil {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "unknown execution id")
		return
	}
	if !state.Status.IsTerminal() {
		fail(c, http.StatusBadRequest, "EXECUTION_NOT_COMPLETED", "execution has not reached a terminal status")
		return
	}

	out, err := formatter.Format(c.Request.Context(), s.store, executionID)
	if err != nil {
		failFromError(c, err)
		return
	}

	switch format {
	case "xml":
		payload, err := RenderXML(out)
		if err != nil {
			fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		c.Data(http.StatusOK, "application/xml; charset=utf-8", payload)
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(RenderMarkdown(out)))
	default:
		ok(c, http.StatusOK, "OK", out)
	}
}

// formatResultsRequest is the body of POST /executions/{execution_id}/results/format.
type formatResultsRequest struct {
	OutputTemplate   map[string]any    `json:"output_template"`
	ExtractionRules  map[string]string `json:"extraction_rules"`
}

// formatResults handles POST /api/v1/executions/{execution_id}/results/format.
func (s *Server) formatResults(c *gin.Context) {
	executionID := c.Param("execution_id")
	if !ids.ValidExecutionID(executionID) {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "malformed execution id")
		return
	}

	var req formatResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_TEMPLATE", err.Error())
		return
	}
	if len(req.OutputTemplate) == 0 {
		fail(c, http.StatusBadRequest, "MISSING_TEMPLATE", "output_template is required")
		return
	}
	if len(req.ExtractionRules) == 0 {
		fail(c, http.StatusBadRequest, "MISSING_RULES", "extraction_rules is required")
		return
	}

	template, err := tmpl.ParseTemplate(req.OutputTemplate)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_TEMPLATE", err.Error())
		return
	}
	if err := tmpl.ValidateExtractionRules(req.ExtractionRules); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_RULES", err.Error())
		return
	}

	state, err := s.store.Get(c.Request.Context(), executionID)
	if err != nil {
		failFromError(c, err)
		return
	}
	if state == nil {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "unknown execution id")
		return
	}
	if !state.Status.IsTerminal() {
		fail(c, http.StatusBadRequest, "EXECUTION_NOT_COMPLETED", "execution has not reached a terminal status")
		return
	}

	out, err := formatter.Format(c.Request.Context(), s.store, executionID)
	if err != nil {
		failFromError(c, err)
		return
	}

	extracted := tmpl.ExtractInformation(req.ExtractionRules, out)
	formatted := tmpl.FormatOutput(template, extracted)

	ok(c, http.StatusOK, "OK", formatted)
}
