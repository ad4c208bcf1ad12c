package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	serversync "github.com/iudanet/deltasync/internal/server/sync"
	"github.com/iudanet/deltasync/pkg/api"
)

//go:generate moq -out adminservice_mock.go . AdminService

// maxImportBodySize ограничивает размер тела импорта
const maxImportBodySize = 64 << 20

// AdminService определяет административные операции над записями
type AdminService interface {
	Import(ctx context.Context, table string, records []api.Record) (serversync.ImportStats, error)
}

// AdminHandler handles administrative requests
type AdminHandler struct {
	logger  *slog.Logger
	service AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(logger *slog.Logger, service AdminService) *AdminHandler {
	return &AdminHandler{
		logger:  logger,
		service: service,
	}
}

// Import обрабатывает POST /api/v1/admin/import?table=<name>
// Тело - JSON массив записей. Записи получают timestamp от часов этого процесса,
// поэтому клиенты видят их при следующем pull.
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get(api.ParamTable)
	if table == "" {
		writeJSON(h.logger, w, http.StatusBadRequest, api.ErrorResponse{
			Error: "table parameter is required",
			Code:  api.CodeValidationFailed,
		})
		return
	}

	var records []api.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBodySize))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		h.logger.Warn("Failed to decode import request", "error", err)
		writeJSON(h.logger, w, http.StatusBadRequest, api.ErrorResponse{
			Error: "invalid request body",
			Code:  api.CodeValidationFailed,
		})
		return
	}
	if len(records) == 0 {
		writeJSON(h.logger, w, http.StatusBadRequest, api.ErrorResponse{
			Error: "no records to import",
			Code:  api.CodeValidationFailed,
		})
		return
	}

	clientID, _ := GetClientID(r.Context())

	stats, err := h.service.Import(r.Context(), table, records)
	if err != nil {
		if errors.Is(err, serversync.ErrValidation) {
			writeJSON(h.logger, w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeValidationFailed})
			return
		}
		h.logger.Error("Import failed", "error", err, "table", table, "client_id", clientID)
		writeJSON(h.logger, w, http.StatusInternalServerError, api.ErrorResponse{
			Error: "failed to import records",
			Code:  api.CodeStorageFailure,
		})
		return
	}

	h.logger.Info("Import served",
		"client_id", clientID,
		"table", table,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
	)

	writeJSON(h.logger, w, http.StatusOK, api.ImportResponse{
		Table:    table,
		Inserted: stats.Inserted,
		Updated:  stats.Updated,
	})
}
