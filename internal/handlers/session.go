package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/response"
	"dementia-tracker/internal/risk"
	"dementia-tracker/internal/session"
)

type SessionHandler struct {
	log    *zap.Logger
	engine *session.Engine
	repo   *repository.Repository
}

func NewSessionHandler(log *zap.Logger, engine *session.Engine, repo *repository.Repository) *SessionHandler {
	return &SessionHandler{log: log, engine: engine, repo: repo}
}

type createSessionRequest struct {
	TestType string `json:"test_type" binding:"required"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	v, err := h.engine.Create(currentUserID(c), req.TestType)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusCreated, v)
}

func (h *SessionHandler) Start(c *gin.Context) {
	v, err := h.engine.Start(c.Param("id"), currentUserID(c))
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

func (h *SessionHandler) Current(c *gin.Context) {
	v, err := h.engine.Current(c.Param("id"), currentUserID(c))
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

type respondRequest struct {
	Value string `json:"value" binding:"required"`
}

func (h *SessionHandler) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	v, err := h.engine.Respond(c.Param("id"), currentUserID(c), req.Value)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

type recallRequest struct {
	Words []string `json:"words"`
}

func (h *SessionHandler) SubmitRecall(c *gin.Context) {
	var req recallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	rv, err := h.engine.SubmitRecall(c.Param("id"), currentUserID(c), req.Words)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, rv)
}

func (h *SessionHandler) Results(c *gin.Context) {
	rv, err := h.engine.Results(c.Param("id"), currentUserID(c))
	if err != nil {
		failSession(c, err)
		return
	}
	if rv.Degraded {
		response.Fail(c, http.StatusConflict, response.ErrDegradedResult)
		return
	}
	response.Success(c, http.StatusOK, rv)
}

// sessionRiskRecord maps a session's risk assessment onto the persisted row.
// The blend weights go into their own columns; the factors list is reserved
// for the standalone evaluation flow, which produces real factor texts.
func sessionRiskRecord(userID uint, sessionKey string, a *risk.Assessment, evaluatedAt time.Time) *models.RiskEvaluation {
	return &models.RiskEvaluation{
		UserID:       userID,
		SessionKey:   sessionKey,
		RiskScore:    a.FinalRisk,
		RiskCategory: a.Category,
		TestRisk:     a.TestRisk,
		DemoRisk:     a.DemoRisk,
		TestsWeight:  risk.TestsWeight,
		DemoWeight:   risk.DemoWeight,
		EvaluatedAt:  evaluatedAt,
	}
}

// Save persists the session's result and risk assessment. The session key
// dedupes retries, and a storage failure leaves the in-memory result intact
// so the user can try again without re-taking the test.
func (h *SessionHandler) Save(c *gin.Context) {
	userID := currentUserID(c)
	id := c.Param("id")

	rv, err := h.engine.Results(id, userID)
	if err != nil {
		failSession(c, err)
		return
	}
	if rv.Degraded || rv.Result == nil {
		response.Fail(c, http.StatusConflict, response.ErrDegradedResult)
		return
	}

	metadata, err := json.Marshal(rv.Result.Metadata)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	timeTaken := rv.Result.TimeTakenSeconds
	record := &models.TestResult{
		UserID:           userID,
		SessionKey:       id,
		TestType:         rv.Result.TestType,
		Score:            rv.Result.Score,
		MaxScore:         rv.Result.MaxScore,
		Percentage:       rv.Result.Percentage,
		PerformanceLevel: rv.Result.PerformanceLevel,
		TimeTaken:        &timeTaken,
		Metadata:         metadata,
		CompletedAt:      rv.Result.CompletedAt,
	}

	saved, err := h.repo.SaveResult(c, record)
	if err != nil {
		h.log.Error("Failed to save test result",
			zap.String("sessionID", id), zap.Uint("userID", userID), zap.Error(err))
		failRepo(c, err)
		return
	}

	var savedRisk *models.RiskEvaluation
	if rv.Risk != nil {
		savedRisk, err = h.repo.SaveRisk(c, sessionRiskRecord(userID, id, rv.Risk, rv.Result.CompletedAt))
		if err != nil {
			h.log.Error("Failed to save risk evaluation",
				zap.String("sessionID", id), zap.Uint("userID", userID), zap.Error(err))
			failRepo(c, err)
			return
		}
	}

	if err := h.engine.MarkSaved(id, userID, saved.ID); err != nil {
		// The record is stored; losing the in-memory flag only affects the
		// results view, so report success anyway.
		h.log.Warn("Could not mark session saved", zap.String("sessionID", id), zap.Error(err))
	}

	payload := gin.H{"result": saved}
	if savedRisk != nil {
		payload["risk"] = savedRisk
	}
	response.Success(c, http.StatusCreated, payload)
}

func (h *SessionHandler) Retake(c *gin.Context) {
	v, err := h.engine.Retake(c.Param("id"), currentUserID(c))
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

func (h *SessionHandler) Quit(c *gin.Context) {
	if err := h.engine.Quit(c.Param("id"), currentUserID(c)); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quit": true})
}

func (h *SessionHandler) Discard(c *gin.Context) {
	if err := h.engine.Discard(c.Param("id"), currentUserID(c)); err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"discarded": true})
}
