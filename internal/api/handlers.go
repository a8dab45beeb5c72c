package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicholasgasior/markitdown-server/internal/pipeline"
)

// PipelineRunner converts one URL; implemented by pipeline.Pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, rawURL string) *pipeline.Outcome
}

// ConvertRequest is the POST /convert body.
type ConvertRequest struct {
	URL string `json:"url" binding:"required"`
}

// ConvertResponse is the POST /convert reply. Handled conversion
// failures come back with Success false and HTTP 200; only malformed
// requests get a 4xx.
type ConvertResponse struct {
	Success        bool    `json:"success"`
	Markdown       string  `json:"markdown,omitempty"`
	FileType       string  `json:"file_type,omitempty"`
	Error          string  `json:"error,omitempty"`
	ErrorKind      string  `json:"error_kind,omitempty"`
	ProcessingTime float64 `json:"processing_time"`
	FileSize       int64   `json:"file_size,omitempty"`
}

func (s *Server) handleConvert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: url is required"})
		return
	}

	out := s.runner.Run(c.Request.Context(), req.URL)

	resp := ConvertResponse{
		Success:        out.Success,
		Markdown:       out.Markdown,
		FileType:       out.FileType,
		ProcessingTime: out.ProcessingTime.Seconds(),
		FileSize:       out.FileSize,
	}
	if out.Err != nil {
		resp.Error = out.Err.Reason
		resp.ErrorKind = string(out.Err.Kind)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "markitdown-server",
		"version": s.version,
	})
}
