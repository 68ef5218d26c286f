package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/response"
)

type ResultsHandler struct {
	log  *zap.Logger
	repo *repository.Repository
}

func NewResultsHandler(log *zap.Logger, repo *repository.Repository) *ResultsHandler {
	return &ResultsHandler{log: log, repo: repo}
}

func (h *ResultsHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	results, err := h.repo.ListRecentResults(c, currentUserID(c), limit)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}

func (h *ResultsHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := repository.HistoryFilter{
		TestType: c.Query("test_type"),
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"from": "must be RFC3339"})
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"to": "must be RFC3339"})
			return
		}
		filter.To = t
	}

	results, total, err := h.repo.History(c, currentUserID(c), filter)
	if err != nil {
		failRepo(c, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}
	response.SuccessWithPagination(c, http.StatusOK, results, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// PerformanceFeedback is the qualitative read on a single result.
type PerformanceFeedback struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Color   string `json:"color"`
}

func performanceFeedback(percentage float64) PerformanceFeedback {
	switch {
	case percentage >= 90:
		return PerformanceFeedback{"Excellent", "Outstanding cognitive performance!", "success"}
	case percentage >= 80:
		return PerformanceFeedback{"Great", "Strong cognitive abilities demonstrated.", "success"}
	case percentage >= 70:
		return PerformanceFeedback{"Good", "Above average performance.", "warning"}
	case percentage >= 60:
		return PerformanceFeedback{"Fair", "Average performance with room for improvement.", "warning"}
	case percentage >= 50:
		return PerformanceFeedback{"Below Average", "Below average performance. Consider retaking.", "danger"}
	default:
		return PerformanceFeedback{"Poor", "Poor performance. Please retake the test.", "danger"}
	}
}

func nextSteps(percentage float64) []string {
	switch {
	case percentage >= 80:
		return []string{"Continue regular testing", "Maintain healthy lifestyle", "Consider advanced tests"}
	case percentage >= 60:
		return []string{"Practice similar tests", "Focus on weak areas", "Retake in 1-2 weeks"}
	default:
		return []string{"Retake the test", "Consult healthcare provider", "Focus on cognitive exercises"}
	}
}

func (h *ResultsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	result, err := h.repo.GetResult(c, currentUserID(c), uint(id))
	if err != nil {
		failRepo(c, err)
		return
	}
	pct := float64(result.Percentage)
	response.Success(c, http.StatusOK, gin.H{
		"result":               result,
		"performance_feedback": performanceFeedback(pct),
		"next_steps":           nextSteps(pct),
	})
}

// Dashboard bundles the profile, per-test aggregates, recent results, the
// latest risk evaluation and the next scheduled test into one payload.
func (h *ResultsHandler) Dashboard(c *gin.Context) {
	userID := currentUserID(c)

	user, err := h.repo.GetUserByID(c, userID)
	if err != nil {
		failRepo(c, err)
		return
	}
	stats, err := h.repo.DashboardStats(c, userID)
	if err != nil {
		failRepo(c, err)
		return
	}
	recent, err := h.repo.ListRecentResults(c, userID, 5)
	if err != nil {
		failRepo(c, err)
		return
	}

	payload := gin.H{
		"profile": user,
		"stats":   stats,
		"recent":  recent,
	}
	if latest, err := h.repo.LatestRisk(c, userID); err == nil {
		payload["latest_risk"] = latest
	}
	if upcoming, err := h.repo.ListSchedules(c, userID, true); err == nil && len(upcoming) > 0 {
		payload["next_scheduled"] = upcoming[0]
	}
	response.Success(c, http.StatusOK, payload)
}

// Timeline returns dated scores for the trend chart, optionally filtered to
// one test type.
func (h *ResultsHandler) Timeline(c *gin.Context) {
	data, err := h.repo.ScoreTimeline(c, currentUserID(c), c.Query("test_type"))
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, data)
}
