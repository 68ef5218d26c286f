package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/response"
	"dementia-tracker/internal/utils"
)

type AuthHandler struct {
	log       *zap.Logger
	repo      *repository.Repository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(log *zap.Logger, repo *repository.Repository, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{log: log, repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type registerRequest struct {
	Email             string `json:"email" binding:"required"`
	Password          string `json:"password" binding:"required"`
	FirstName         string `json:"first_name" binding:"required"`
	LastName          string `json:"last_name" binding:"required"`
	Age               int    `json:"age" binding:"required"`
	Gender            string `json:"gender"`
	FamilyHistory     string `json:"family_history"`
	MedicalConditions string `json:"medical_conditions"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	fields := map[string]string{}
	if !utils.IsValidEmail(req.Email) {
		fields["email"] = "invalid email address"
	}
	if !utils.IsValidPassword(req.Password) {
		fields["password"] = "password too short"
	}
	if req.Age < 18 {
		fields["age"] = "must be 18 or older"
	}
	if len(fields) > 0 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user := &models.User{
		Email:             req.Email,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Age:               req.Age,
		Gender:            req.Gender,
		FamilyHistory:     req.FamilyHistory,
		MedicalConditions: req.MedicalConditions,
	}
	if err := h.repo.CreateUser(c, user, req.Password); err != nil {
		failRepo(c, err)
		return
	}

	token, err := utils.GenerateToken(h.jwtSecret, h.tokenTTL, user.ID, user.Email)
	if err != nil {
		h.log.Error("Failed to sign token after registration", zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info("User registered", zap.Uint("userID", user.ID))
	response.Success(c, http.StatusCreated, gin.H{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	user, err := h.repo.GetUserByEmail(c, req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(h.jwtSecret, h.tokenTTL, user.ID, user.Email)
	if err != nil {
		h.log.Error("Failed to sign token", zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.repo.GetUserByID(c, currentUserID(c))
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

type updateProfileRequest struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Age               *int    `json:"age"`
	Gender            *string `json:"gender"`
	FamilyHistory     *string `json:"family_history"`
	MedicalConditions *string `json:"medical_conditions"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	if req.Age != nil && *req.Age < 18 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"age": "must be 18 or older"})
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.FamilyHistory != nil {
		updates["family_history"] = *req.FamilyHistory
	}
	if req.MedicalConditions != nil {
		updates["medical_conditions"] = *req.MedicalConditions
	}

	if err := h.repo.UpdateProfile(c, currentUserID(c), updates); err != nil {
		failRepo(c, err)
		return
	}

	user, err := h.repo.GetUserByID(c, currentUserID(c))
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
