package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/libreshelf/libreshelf/internal/auth"
	"github.com/libreshelf/libreshelf/internal/model"
	"github.com/libreshelf/libreshelf/internal/store"
)

// PortalHandler handles student self-service endpoints.
type PortalHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type registerRequest struct {
	AdmissionNo string `json:"admission_no"`
	Name        string `json:"name"`
	Batch       string `json:"batch"`
	Password    string `json:"password"`
}

type portalLoginRequest struct {
	AdmissionNo string `json:"admission_no"`
	Password    string `json:"password"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// Register handles POST /api/portal/register (public). The account
// stays unusable until a librarian approves it.
func (h *PortalHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := store.RegisterStudent(r.Context(), h.DB, req.AdmissionNo, req.Name, req.Batch, req.Password)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("portal registration", "admission_no", student.AdmissionNo)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"student": student,
		"status":  model.AuthPending,
	})
}

// Login handles POST /api/portal/login (public). A correct password on
// an unapproved account gets a distinct "pending approval" answer.
func (h *PortalHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req portalLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AdmissionNo == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "admission number and password required")
		return
	}

	status, student, err := store.AuthenticateStudent(r.Context(), h.DB, req.AdmissionNo, req.Password)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch status {
	case model.AuthApproved:
		token, err := auth.GenerateStudentToken(h.JWTSecret, student.AdmissionNo)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to generate token")
			return
		}
		slog.Info("student logged in", "admission_no", student.AdmissionNo)
		jsonResponse(w, http.StatusOK, map[string]any{"token": token, "status": status})
	case model.AuthPending:
		jsonError(w, http.StatusForbidden, "account awaiting librarian approval")
	default:
		slog.Warn("portal login failed", "admission_no", req.AdmissionNo, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
	}
}

// MyLoans handles GET /api/portal/loans for the logged-in student.
func (h *PortalHandler) MyLoans(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil || claims.Role != model.RoleStudent {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	student, err := store.FindStudentByAdmissionNo(r.Context(), h.DB, claims.AdmissionNo)
	if err != nil {
		storeError(w, err)
		return
	}
	if student == nil {
		jsonError(w, http.StatusNotFound, "student not found")
		return
	}

	loans, err := store.StudentLoans(r.Context(), h.DB, student.ID)
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// ChangePassword handles PUT /api/portal/password for the logged-in
// student.
func (h *PortalHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil || claims.Role != model.RoleStudent {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := store.ChangeStudentPassword(r.Context(), h.DB, claims.AdmissionNo, req.CurrentPassword, req.NewPassword)
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("student changed own password", "admission_no", claims.AdmissionNo)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ListPending handles GET /api/portal/pending (librarian).
func (h *PortalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	regs, err := store.ListPendingRegistrations(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	jsonResponse(w, http.StatusOK, regs)
}

// Approve handles POST /api/portal/{admission_no}/approve (librarian).
func (h *PortalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	admissionNo := r.PathValue("admission_no")
	if err := store.ApproveStudent(r.Context(), h.DB, admissionNo); err != nil {
		storeError(w, err)
		return
	}

	slog.Info("registration approved", "admission_no", admissionNo)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "registration approved"})
}

// Reject handles POST /api/portal/{admission_no}/reject (librarian).
// Deletes the unapproved profile and its credential.
func (h *PortalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	admissionNo := r.PathValue("admission_no")
	if err := store.RejectStudent(r.Context(), h.DB, admissionNo); err != nil {
		storeError(w, err)
		return
	}

	slog.Info("registration rejected", "admission_no", admissionNo)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "registration rejected"})
}

// ResetPassword handles PUT /api/portal/{admission_no}/password
// (librarian-forced, no current-password check).
func (h *PortalHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	admissionNo := r.PathValue("admission_no")
	if err := store.ResetStudentPassword(r.Context(), h.DB, admissionNo, req.NewPassword); err != nil {
		storeError(w, err)
		return
	}

	slog.Info("student password reset by librarian", "admission_no", admissionNo)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}
