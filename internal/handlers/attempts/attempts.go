package attempts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/GlebRadaev/examledger/internal/domain"
	"github.com/GlebRadaev/examledger/internal/dto"
	"github.com/GlebRadaev/examledger/internal/service/attemptservice"
	"github.com/GlebRadaev/examledger/pkg/auth"
	"github.com/GlebRadaev/examledger/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:generate mockgen -source=attempts.go -destination=mock_attempts.go -package=attempts

type Service interface {
	StartOrResumeAttempt(ctx context.Context, userID, examID int) (*attemptservice.Session, error)
	FinishAttempt(ctx context.Context, userID, attemptID int, status domain.AttemptStatus) (*domain.ExamAttempt, error)
}

type AttemptHandler struct {
	attemptService Service
}

func New(attemptService Service) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
	}
}

func toDTO(attempt *domain.ExamAttempt, resumed bool) dto.AttemptResponseDTO {
	resp := dto.AttemptResponseDTO{
		AttemptID:   attempt.ID,
		ExamID:      attempt.ExamID,
		Status:      string(attempt.Status),
		CreditsUsed: attempt.CreditsUsed,
		QuestionIDs: attempt.ServedQuestions,
		Resumed:     resumed,
		StartedAt:   attempt.StartedAt.Format(time.RFC3339),
	}
	if attempt.FinishedAt != nil {
		resp.FinishedAt = attempt.FinishedAt.Format(time.RFC3339)
	}
	return resp
}

func respondWithDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientCredits):
		utils.RespondWithError(w, http.StatusPaymentRequired, "Insufficient credits, purchase more to start this exam")
	case errors.Is(err, domain.ErrExamNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAttemptNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrExamInactive),
		errors.Is(err, domain.ErrAttemptFinished):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientContent):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("attempt request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// StartAttempt godoc
//
//	@Summary		Start or resume an exam attempt
//	@Description	Returns the open attempt of the exam, or starts a new one and charges its price.
//	@Tags			Attempts
//	@Produce		json
//	@Param			examID	path	int	true	"Exam ID"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.AttemptResponseDTO	"New attempt started"
//	@Success		200	{object}	dto.AttemptResponseDTO	"Open attempt resumed"
//	@Failure		400	{object}	utils.Response			"Bad exam id"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		402	{object}	utils.Response			"Insufficient credits"
//	@Failure		404	{object}	utils.Response			"Exam not found"
//	@Failure		409	{object}	utils.Response			"Exam is not active"
//	@Failure		422	{object}	utils.Response			"Exam has too few questions"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/user/exams/{examID}/attempts [post]
func (h *AttemptHandler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	examID, err := strconv.Atoi(chi.URLParam(r, "examID"))
	if err != nil || examID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid exam id")
		return
	}

	session, err := h.attemptService.StartOrResumeAttempt(r.Context(), userID, examID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	code := http.StatusCreated
	if session.Resumed {
		code = http.StatusOK
	}
	resp := toDTO(session.Attempt, session.Resumed)
	if session.Exam != nil {
		resp.Exam = &dto.ExamMetaDTO{
			ID:               session.Exam.ID,
			Title:            session.Exam.Title,
			Price:            session.Exam.Price,
			IsFree:           session.Exam.IsFree,
			QuestionsToServe: session.Exam.QuestionsToServe,
		}
	}
	utils.RespondWithJSON(w, code, resp)
}

// FinishAttempt godoc
//
//	@Summary		Finish an exam attempt
//	@Tags			Attempts
//	@Accept			json
//	@Produce		json
//	@Param			attemptID	path	int							true	"Attempt ID"
//	@Param			request		body	dto.FinishAttemptRequestDTO	true	"COMPLETED or ABANDONED"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.AttemptResponseDTO
//	@Failure		400	{object}	utils.Response	"Bad request"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Attempt not found"
//	@Failure		409	{object}	utils.Response	"Attempt already finished"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/attempts/{attemptID} [patch]
func (h *AttemptHandler) FinishAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	attemptID, err := strconv.Atoi(chi.URLParam(r, "attemptID"))
	if err != nil || attemptID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid attempt id")
		return
	}

	var req dto.FinishAttemptRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	attempt, err := h.attemptService.FinishAttempt(r.Context(), userID, attemptID, domain.AttemptStatus(req.Status))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toDTO(attempt, false))
}
