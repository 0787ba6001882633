package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/confessit/internal/models"
	"github.com/spacesedan/confessit/internal/processing"
	"github.com/spacesedan/confessit/internal/render"
)

const (
	METHOD_FETCH  = "fetch"
	METHOD_MANUAL = "manual"
)

type indexPage struct {
	Source     string
	MinLimit   int
	MaxLimit   int
	Limit      int
	Method     string
	BufferSize int
	InProgress bool
	Notice     string
	Error      string
}

type resultsPage struct {
	Results          models.ResultSet
	HasPositiveWords bool
	HasNegativeWords bool
}

type analyzeRequest struct {
	Confessions []models.Confession `json:"confessions"`
}

type analyzeResponse struct {
	Results models.ResultSet `json:"results"`
	Summary models.Summary   `json:"summary"`
}

func (s *Server) page(limit int) indexPage {
	return indexPage{
		Source:     s.fetcher.SourceName(),
		MinLimit:   processing.MIN_FETCH_LIMIT,
		MaxLimit:   processing.MAX_FETCH_LIMIT,
		Limit:      limit,
		Method:     METHOD_FETCH,
		BufferSize: s.confessions.Size(),
		InProgress: s.fetcher.InProgress(),
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.page(processing.MIN_FETCH_LIMIT))
}

func (s *Server) handleManualEntry(c *gin.Context) {
	confessions := processing.ParseManualInput(c.PostForm("confessions"))
	if len(confessions) == 0 {
		s.confessions.Flush()
	} else {
		s.confessions.Replace(confessions)
	}

	data := s.page(processing.MIN_FETCH_LIMIT)
	data.Method = METHOD_MANUAL
	if len(confessions) == 0 {
		data.Notice = "No confessions entered."
	} else {
		data.Notice = fmt.Sprintf("✅ Recorded %d confessions! Click 'Analyse!' for analysis", len(confessions))
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) handleFetch(c *gin.Context) {
	limit, err := strconv.Atoi(c.PostForm("limit"))
	if err != nil {
		limit = 0
	}

	confessions, err := s.fetcher.Fetch(c.Request.Context(), limit)
	if err != nil {
		status := fetchErrorStatus(err)
		slog.Warn("[Server] Fetch failed",
			slog.Int("limit", limit),
			slog.Int("status", status),
			slog.String("error", err.Error()))

		data := s.page(clampLimit(limit))
		data.Error = err.Error()
		c.HTML(status, "index.html", data)
		return
	}

	s.confessions.Replace(confessions)

	data := s.page(limit)
	if len(confessions) == 0 {
		data.Notice = "No confessions found in the channel."
	} else {
		data.Notice = fmt.Sprintf("✅ Fetched %d confessions! Click 'Analyse!' for analysis", len(confessions))
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	confessions := s.confessions.Snapshot()
	if len(confessions) == 0 {
		c.HTML(http.StatusOK, "results.html", resultsPage{})
		return
	}

	results := s.analyzer.Analyze(confessions)
	summary := processing.Summarize(results)

	c.HTML(http.StatusOK, "results.html", resultsPage{
		Results:          results,
		HasPositiveWords: len(render.BucketWords(summary, models.SentimentPositive)) > 0,
		HasNegativeWords: len(render.BucketWords(summary, models.SentimentNegative)) > 0,
	})
}

// handleCharts re-runs the analysis on the buffer. Analysis is deterministic,
// so the charts match the table rendered by handleAnalyze.
func (s *Server) handleCharts(c *gin.Context) {
	confessions := s.confessions.Snapshot()
	if len(confessions) == 0 {
		c.String(http.StatusOK, "No confessions for analysis yet.")
		return
	}

	summary := processing.Summarize(s.analyzer.Analyze(confessions))

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render.RenderDashboard(c.Writer, summary); err != nil {
		slog.Error("[Server] Failed to render charts", slog.String("error", err.Error()))
	}
}

func (s *Server) handleListConfessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"confessions": s.confessions.Snapshot()})
}

// handleAPIAnalyze analyzes the posted confessions without touching the
// shared buffer.
func (s *Server) handleAPIAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Confessions) > processing.MAX_FETCH_LIMIT {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("at most %d confessions can be analyzed at once", processing.MAX_FETCH_LIMIT),
		})
		return
	}

	results := s.analyzer.Analyze(req.Confessions)
	c.JSON(http.StatusOK, analyzeResponse{
		Results: results,
		Summary: processing.Summarize(results),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":            "ok",
		"source":            s.fetcher.SourceName(),
		"fetch_in_progress": s.fetcher.InProgress(),
	}
	if s.sourceUp != nil {
		body["source_reachable"] = s.sourceUp.Load()
		if !s.sourceUp.Load() {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}

func fetchErrorStatus(err error) int {
	switch {
	case errors.Is(err, processing.ErrInvalidLimit):
		return http.StatusBadRequest
	case errors.Is(err, processing.ErrFetchInProgress):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func clampLimit(limit int) int {
	return max(processing.MIN_FETCH_LIMIT, min(limit, processing.MAX_FETCH_LIMIT))
}
