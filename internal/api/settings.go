package api

import (
	"database/sql"
	"net/http"

	"github.com/libreshelf/libreshelf/internal/store"
)

// SettingsHandler handles library settings endpoints.
type SettingsHandler struct {
	DB *sql.DB
}

type loanDaysRequest struct {
	Days int `json:"days"`
}

// GetLoanDays handles GET /api/settings/loan-days.
func (h *SettingsHandler) GetLoanDays(w http.ResponseWriter, r *http.Request) {
	days, err := store.DefaultLoanDays(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"days": days})
}

// SetLoanDays handles PUT /api/settings/loan-days.
func (h *SettingsHandler) SetLoanDays(w http.ResponseWriter, r *http.Request) {
	var req loanDaysRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetDefaultLoanDays(r.Context(), h.DB, req.Days); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]int{"days": req.Days})
}
