// Package httpapi exposes the practice engine as a JSON HTTP API.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordpace/internal/entity"
	"github.com/eslsoft/wordpace/internal/repository"
	"github.com/eslsoft/wordpace/internal/usecase"
)

// PracticeService bundles the HTTP handlers over the practice usecases.
type PracticeService struct {
	practice  usecase.PracticeUsecase
	sessions  usecase.SessionUsecase
	reeval    usecase.ReevaluateUsecase
	threshold float64
	logger    *logrus.Logger
}

// NewPracticeService wires the handlers. threshold <= 0 keeps the engine
// default for batch reevaluation.
func NewPracticeService(
	practice usecase.PracticeUsecase,
	sessions usecase.SessionUsecase,
	reeval usecase.ReevaluateUsecase,
	threshold float64,
	logger *logrus.Logger,
) *PracticeService {
	return &PracticeService{
		practice:  practice,
		sessions:  sessions,
		reeval:    reeval,
		threshold: threshold,
		logger:    logger,
	}
}

// Register mounts the API routes on the given group.
func (s *PracticeService) Register(g *echo.Group) {
	g.POST("/words", s.CollectWord)
	g.GET("/words", s.ListWordRecords)
	g.GET("/words/:id", s.GetWordRecord)

	g.POST("/practice/attempts", s.SubmitAnswer)
	g.POST("/practice/sessions", s.CreateSession)
	g.POST("/practice/reevaluate", s.Reevaluate)
}

type collectWordRequest struct {
	UserID   int64  `json:"user_id"`
	Word     string `json:"word"`
	Language string `json:"language"`
}

// CollectWord adds a word to the user's practice pool.
// POST /api/v1/words
func (s *PracticeService) CollectWord(c echo.Context) error {
	var req collectWordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	rec, err := s.practice.CollectWord(c.Request().Context(), req.UserID, req.Word, entity.Language(req.Language))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toWordRecordResponse(rec))
}

// GetWordRecord returns one word record by id.
// GET /api/v1/words/:id
func (s *PracticeService) GetWordRecord(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return badRequest(c, "user_id is required")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid word record id")
	}
	rec, err := s.practice.GetWordRecord(c.Request().Context(), userID, id)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toWordRecordResponse(rec))
}

type listWordRecordsResponse struct {
	Records []wordRecordResponse `json:"records"`
	Total   int64                `json:"total"`
}

// ListWordRecords lists word records with AIP-160 style filtering.
// GET /api/v1/words?filter=...&order_by=...&page=...&page_size=...
func (s *PracticeService) ListWordRecords(c echo.Context) error {
	userID, err := queryUserID(c)
	if err != nil {
		return badRequest(c, "user_id is required")
	}

	query := &repository.ListWordRecordQuery{UserID: userID}
	query.Filter = c.QueryParam("filter")
	query.OrderBy = c.QueryParam("order_by")
	query.PageNo = queryInt32(c, "page", 1)
	query.PageSize = queryInt32(c, "page_size", 50)

	recs, total, err := s.practice.ListWordRecords(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	resp := listWordRecordsResponse{
		Records: make([]wordRecordResponse, 0, len(recs)),
		Total:   total,
	}
	for _, rec := range recs {
		resp.Records = append(resp.Records, toWordRecordResponse(rec))
	}
	return c.JSON(http.StatusOK, resp)
}

type submitAnswerRequest struct {
	UserID         int64  `json:"user_id"`
	WordRecordID   int64  `json:"word_record_id"`
	SessionID      string `json:"session_id"`
	ExerciseType   string `json:"exercise_type"`
	UserInput      string `json:"user_input"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	MistakeType    string `json:"mistake_type"`
}

// SubmitAnswer grades one answer and reschedules the word.
// POST /api/v1/practice/attempts
func (s *PracticeService) SubmitAnswer(c echo.Context) error {
	var req submitAnswerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	result, err := s.practice.SubmitAnswer(c.Request().Context(), req.UserID, usecase.SubmitAnswerInput{
		WordRecordID:   req.WordRecordID,
		SessionID:      req.SessionID,
		ExerciseType:   entity.ExerciseType(req.ExerciseType),
		UserInput:      req.UserInput,
		ResponseTimeMs: req.ResponseTimeMs,
		MistakeType:    req.MistakeType,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSubmitAnswerResponse(result))
}

type createSessionRequest struct {
	UserID             int64    `json:"user_id"`
	WordsToStudy       int32    `json:"words_to_study"`
	DifficultyOverride int32    `json:"difficulty_override"`
	EnabledTypes       []string `json:"enabled_types"`
	Source             string   `json:"source"`
	PrioritizeOverdue  bool     `json:"prioritize_overdue"`
	SkipEasyMode       bool     `json:"skip_easy_mode"`
}

// CreateSession composes a bounded practice session.
// POST /api/v1/practice/sessions
func (s *PracticeService) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	enabled := make([]entity.ExerciseType, 0, len(req.EnabledTypes))
	for _, t := range req.EnabledTypes {
		enabled = append(enabled, entity.ExerciseType(t))
	}

	sess, err := s.sessions.CreateSession(c.Request().Context(), &entity.SessionRequest{
		UserID:             req.UserID,
		WordsToStudy:       req.WordsToStudy,
		DifficultyOverride: req.DifficultyOverride,
		EnabledTypes:       enabled,
		Source:             entity.SourcePolicy(req.Source),
		PrioritizeOverdue:  req.PrioritizeOverdue,
		SkipEasyMode:       req.SkipEasyMode,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(sess))
}

type reevaluateRequest struct {
	UserID    int64   `json:"user_id"`
	Threshold float64 `json:"threshold"`
}

// Reevaluate runs the batch difficulty pass for one user.
// POST /api/v1/practice/reevaluate
func (s *PracticeService) Reevaluate(c echo.Context) error {
	var req reevaluateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID <= 0 {
		return badRequest(c, "user_id is required")
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.threshold
	}

	applied, err := s.reeval.Reevaluate(c.Request().Context(), req.UserID, threshold)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReevaluateResponse(applied))
}

func queryUserID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid user_id")
	}
	return id, nil
}

func queryInt32(c echo.Context, name string, fallback int32) int32 {
	v, err := strconv.ParseInt(c.QueryParam(name), 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *PracticeService) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrWordRecordNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrDuplicateWordRecord):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrVersionConflict):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrInvalidWordText),
		errors.Is(err, entity.ErrInvalidAnswerInput),
		errors.Is(err, entity.ErrInvalidSessionRequest),
		errors.Is(err, entity.ErrInvalidListQuery):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.WithError(err).Error("request failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
