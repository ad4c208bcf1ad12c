package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	serversync "github.com/iudanet/deltasync/internal/server/sync"
	"github.com/iudanet/deltasync/internal/snapshot"
	"github.com/iudanet/deltasync/pkg/api"
)

//go:generate moq -out syncservice_mock.go . SyncService

// maxPushBodySize ограничивает размер тела push запроса
const maxPushBodySize = 32 << 20

// contextKey тип для ключей контекста
type contextKey string

// ClientIDKey ключ для хранения client_id в контексте
const ClientIDKey contextKey = "client_id"

// AdminKey ключ признака административного токена в контексте
const AdminKey contextKey = "admin"

// GetClientID извлекает client_id из контекста запроса
func GetClientID(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(ClientIDKey).(string)
	return clientID, ok
}

// IsAdmin сообщает, аутентифицирован ли запрос административным токеном
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(AdminKey).(bool)
	return admin
}

// SyncService определяет операции синхронизации, нужные handler'у
type SyncService interface {
	Pull(ctx context.Context, checkpoint int64, turbo bool) (*serversync.PullResult, error)
	Push(ctx context.Context, req api.PushRequest) error
	Bootstrap(ctx context.Context) (*snapshot.Snapshot, error)
}

// SyncHandler handles synchronization requests
type SyncHandler struct {
	logger  *slog.Logger
	service SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, service SyncService) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		service: service,
	}
}

// Pull обрабатывает GET /api/v1/sync?last_pulled_at=<ms>&turbo=<bool>
// last_pulled_at отсутствует или равен null при первой синхронизации
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var checkpoint int64
	if raw := query.Get(api.ParamLastPulledAt); raw != "" && raw != "null" {
		var err error
		checkpoint, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warn("Invalid last_pulled_at parameter", "last_pulled_at", raw, "error", err)
			h.sendError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid last_pulled_at parameter")
			return
		}
	}

	var turbo bool
	if raw := query.Get(api.ParamTurbo); raw != "" {
		var err error
		turbo, err = strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("Invalid turbo parameter", "turbo", raw, "error", err)
			h.sendError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid turbo parameter")
			return
		}
	}

	clientID, _ := GetClientID(r.Context())

	result, err := h.service.Pull(r.Context(), checkpoint, turbo)
	if err != nil {
		if errors.Is(err, serversync.ErrValidation) {
			h.sendError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
			return
		}
		h.logger.Error("Pull failed", "error", err, "client_id", clientID, "last_pulled_at", checkpoint)
		h.sendError(w, http.StatusInternalServerError, api.CodeStorageFailure, "failed to read changes")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if result.Raw != nil {
		// turbo: тело уже закодировано
		if _, err := w.Write(result.Raw); err != nil {
			h.logger.Error("Failed to write turbo response", "error", err)
		}
	} else if err := json.NewEncoder(w).Encode(result.Response); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}

	h.logger.Info("Pull served",
		"client_id", clientID,
		"last_pulled_at", checkpoint,
		"server_timestamp", result.Response.ServerTimestamp,
		"turbo", result.Raw != nil,
	)
}

// Push обрабатывает POST /api/v1/sync
// Применяет пакет изменений клиента целиком или не применяет ничего
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req api.PushRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPushBodySize))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("Failed to decode push request", "error", err)
		h.sendError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid request body")
		return
	}

	clientID, _ := GetClientID(r.Context())

	if err := h.service.Push(r.Context(), req); err != nil {
		status, code := pushErrorStatus(err)
		h.logger.Info("Push rejected",
			"client_id", clientID,
			"last_pulled_at", req.LastPulledAt,
			"code", code,
			"error", err,
		)
		message := err.Error()
		if code == api.CodeStorageFailure || code == api.CodeInternal {
			message = "failed to apply changes, retry later"
		}
		h.sendError(w, status, code, message)
		return
	}

	h.sendJSON(w, http.StatusOK, api.PushResponse{OK: true})
}

// Bootstrap обрабатывает GET /api/v1/sync/bootstrap
// Отдает bbolt файл со всеми живыми записями и checkpoint в заголовке
func (h *SyncHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Bootstrap(r.Context())
	if err != nil {
		h.logger.Error("Bootstrap failed", "error", err)
		h.sendError(w, http.StatusInternalServerError, api.CodeStorageFailure, "failed to build snapshot")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="bootstrap.db"`)
	w.Header().Set(api.HeaderServerTimestamp, strconv.FormatInt(snap.LastPulledAt, 10))

	n, err := snapshot.Write(w, snap)
	if err != nil {
		h.logger.Error("Failed to write snapshot", "error", err, "bytes", n)
		if n == 0 {
			w.Header().Del(api.HeaderServerTimestamp)
			h.sendError(w, http.StatusInternalServerError, api.CodeInternal, "failed to write snapshot")
		}
		return
	}

	h.logger.Info("Bootstrap served", "bytes", n, "last_pulled_at", snap.LastPulledAt)
}

// pushErrorStatus maps push errors to HTTP status and error code
func pushErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, serversync.ErrConflict):
		return http.StatusConflict, api.CodeConflict
	case errors.Is(err, serversync.ErrValidation):
		return http.StatusBadRequest, api.CodeValidationFailed
	case errors.Is(err, serversync.ErrStorage):
		return http.StatusBadRequest, api.CodeStorageFailure
	default:
		return http.StatusInternalServerError, api.CodeInternal
	}
}

// sendJSON отправляет JSON ответ
func (h *SyncHandler) sendJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(h.logger, w, status, data)
}

// sendError отправляет ответ с ошибкой
func (h *SyncHandler) sendError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(h.logger, w, status, api.ErrorResponse{Error: message, Code: code})
}
