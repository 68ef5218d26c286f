package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/response"
	"dementia-tracker/internal/risk"
)

type EvaluationHandler struct {
	log  *zap.Logger
	repo *repository.Repository
}

func NewEvaluationHandler(log *zap.Logger, repo *repository.Repository) *EvaluationHandler {
	return &EvaluationHandler{log: log, repo: repo}
}

// evaluationWindow is how far back the standalone evaluation looks for
// cognitive results.
const evaluationWindow = 3 * 30 * 24 * time.Hour

// Evaluate runs the standalone point-based risk evaluation over the user's
// profile and their recent test history, and persists the outcome.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	userID := currentUserID(c)

	user, err := h.repo.GetUserByID(c, userID)
	if err != nil {
		failRepo(c, err)
		return
	}

	since := time.Now().Add(-evaluationWindow)
	count, avg, err := h.repo.CognitiveAverageSince(c, userID, since)
	if err != nil {
		failRepo(c, err)
		return
	}

	eval := risk.Evaluate(risk.Profile{
		Age:               user.Age,
		Gender:            user.Gender,
		FamilyHistory:     user.FamilyHistory,
		MedicalConditions: user.MedicalConditions,
	}, risk.CognitiveSummary{
		TotalTests:        int(count),
		AveragePercentage: avg,
	})

	saved, err := h.repo.SaveRisk(c, &models.RiskEvaluation{
		UserID:          userID,
		RiskScore:       eval.RiskScore,
		RiskCategory:    eval.RiskCategory,
		Factors:         pq.StringArray(eval.Factors),
		Recommendations: pq.StringArray(eval.Recommendations),
		EvaluatedAt:     time.Now(),
	})
	if err != nil {
		h.log.Error("Failed to save risk evaluation", zap.Uint("userID", userID), zap.Error(err))
		failRepo(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"evaluation": saved,
		"cognitive_summary": gin.H{
			"total_tests":   count,
			"average_score": int(avg + 0.5),
		},
	})
}

func (h *EvaluationHandler) Latest(c *gin.Context) {
	eval, err := h.repo.LatestRisk(c, currentUserID(c))
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, eval)
}

func (h *EvaluationHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	evals, err := h.repo.ListRiskHistory(c, currentUserID(c), limit)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, evals)
}
