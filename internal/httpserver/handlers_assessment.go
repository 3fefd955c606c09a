package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pathakanu/mindwell/internal/apperrors"
	"github.com/pathakanu/mindwell/internal/assessment"
	"github.com/pathakanu/mindwell/internal/model"
	"github.com/pathakanu/mindwell/internal/sentiment"
)

type contentRequest struct {
	Content string `json:"content"`
}

type assessmentResponse struct {
	*model.Assessment
	SupportMessage string `json:"support_message,omitempty"`
}

type analysisResponse struct {
	sentiment.Analysis
	SupportMessage string `json:"support_message,omitempty"`
}

func (s *Server) registerAssessmentRoutes(g *echo.Group) {
	g.POST("/assessments", s.handleSubmitAssessment)
	g.GET("/assessments", s.handleListAssessments)
	g.POST("/analyze", s.handleAnalyze)
	g.GET("/analytics/personal", s.handlePersonalAnalytics)
	g.GET("/analytics/global", s.handleGlobalAnalytics)
	g.GET("/analytics/regional", s.handleRegionalAnalytics)
}

func (s *Server) handleSubmitAssessment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	record, err := s.assessments.Submit(c.Request().Context(), user.ID, req.Content)
	if err != nil {
		return toAppError(err, "failed to save assessment")
	}

	return sendJSON(c, http.StatusCreated, assessmentResponse{
		Assessment:     record,
		SupportMessage: supportMessage(record.SeverityLevel),
	})
}

func (s *Server) handleListAssessments(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := assessment.DefaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > assessment.MaxRecentLimit {
			return apperrors.ValidationError("limit must be between 1 and 100").WithField("limit", raw)
		}
		limit = n
	}

	records, err := s.assessments.Recent(c.Request().Context(), user.ID, limit)
	if err != nil {
		return toAppError(err, "failed to load assessments")
	}
	if records == nil {
		records = []model.Assessment{}
	}
	return sendJSON(c, http.StatusOK, records)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	analysis, err := s.assessments.Analyze(c.Request().Context(), req.Content)
	if err != nil {
		return toAppError(err, "failed to analyze content")
	}

	return sendJSON(c, http.StatusOK, analysisResponse{
		Analysis:       analysis,
		SupportMessage: supportMessage(analysis.Severity),
	})
}

func (s *Server) handlePersonalAnalytics(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	summary, err := s.assessments.PersonalAnalytics(c.Request().Context(), user.ID)
	if err != nil {
		return toAppError(err, "failed to load analytics")
	}
	return sendJSON(c, http.StatusOK, summary)
}

func (s *Server) handleGlobalAnalytics(c echo.Context) error {
	rows, err := s.references.Global(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to load global data", err)
	}
	if rows == nil {
		rows = []model.GlobalMentalHealthData{}
	}
	return sendJSON(c, http.StatusOK, rows)
}

func (s *Server) handleRegionalAnalytics(c echo.Context) error {
	rows, err := s.references.Regional(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to load regional data", err)
	}
	if rows == nil {
		rows = []model.RegionalMentalHealthData{}
	}
	return sendJSON(c, http.StatusOK, rows)
}

func supportMessage(severity sentiment.Severity) string {
	if severity == sentiment.SeverityHigh {
		return assessment.SupportMessage
	}
	return ""
}
