package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/libreshelf/libreshelf/internal/model"
	"github.com/libreshelf/libreshelf/internal/store"
)

// LoansHandler handles loan lifecycle and reporting endpoints.
type LoansHandler struct {
	DB *sql.DB
}

type issueRequest struct {
	BookToken   string `json:"book"`
	AdmissionNo string `json:"admission_no"`
	Days        int    `json:"days"`
	DueDate     string `json:"due_date"`
}

type returnRequest struct {
	BookToken   string `json:"book"`
	AdmissionNo string `json:"admission_no"`
}

type extendRequest struct {
	DueDate string `json:"due_date"`
}

// Issue handles POST /api/loans. When neither a day count nor an
// explicit due date is supplied, the configured default loan period
// applies.
func (h *LoansHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BookToken == "" || req.AdmissionNo == "" {
		jsonError(w, http.StatusBadRequest, "book and admission number required")
		return
	}

	if req.Days == 0 && req.DueDate == "" {
		days, err := store.DefaultLoanDays(r.Context(), h.DB)
		if err != nil {
			storeError(w, err)
			return
		}
		req.Days = days
	}

	loan, err := store.IssueBook(r.Context(), h.DB, store.IssueRequest{
		BookToken:   req.BookToken,
		AdmissionNo: req.AdmissionNo,
		Days:        req.Days,
		DueDate:     req.DueDate,
	})
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("book issued", "loan", loan.ID, "book", loan.BookName, "admission_no", loan.AdmissionNo, "due", loan.DueDate)
	jsonResponse(w, http.StatusCreated, loan)
}

// Return handles POST /api/loans/return.
func (h *LoansHandler) Return(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.BookToken == "" || req.AdmissionNo == "" {
		jsonError(w, http.StatusBadRequest, "book and admission number required")
		return
	}

	loan, err := store.ReturnBook(r.Context(), h.DB, req.BookToken, req.AdmissionNo, "")
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("book returned", "loan", loan.ID, "book", loan.BookName, "admission_no", loan.AdmissionNo)
	jsonResponse(w, http.StatusOK, loan)
}

// Extend handles PUT /api/loans/{id}/due-date.
func (h *LoansHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	var req extendRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	loan, err := store.ExtendLoan(r.Context(), h.DB, id, req.DueDate, "")
	if err != nil {
		storeError(w, err)
		return
	}

	slog.Info("loan extended", "loan", loan.ID, "due", loan.DueDate)
	jsonResponse(w, http.StatusOK, loan)
}

// Get handles GET /api/loans/{id}.
func (h *LoansHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid loan id")
		return
	}

	loan, err := store.GetLoan(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if loan == nil {
		jsonError(w, http.StatusNotFound, "loan not found")
		return
	}

	jsonResponse(w, http.StatusOK, loan)
}

// Active handles GET /api/loans/active.
func (h *LoansHandler) Active(w http.ResponseWriter, r *http.Request) {
	loans, err := store.ActiveLoans(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// Overdue handles GET /api/loans/overdue.
func (h *LoansHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	loans, err := store.OverdueLoans(r.Context(), h.DB, "")
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// History handles GET /api/loans/history with optional q and status
// query parameters.
func (h *LoansHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loans, err := store.LoanHistory(r.Context(), h.DB, q.Get("q"), q.Get("status"))
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}

// TopBooks handles GET /api/reports/top-books.
func (h *LoansHandler) TopBooks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	counts, err := store.TopBooks(r.Context(), h.DB, limit)
	if err != nil {
		storeError(w, err)
		return
	}
	if counts == nil {
		counts = []model.BookCount{}
	}
	jsonResponse(w, http.StatusOK, counts)
}

// TopStudents handles GET /api/reports/top-students.
func (h *LoansHandler) TopStudents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	counts, err := store.TopStudents(r.Context(), h.DB, limit)
	if err != nil {
		storeError(w, err)
		return
	}
	if counts == nil {
		counts = []model.StudentCount{}
	}
	jsonResponse(w, http.StatusOK, counts)
}

// Stats handles GET /api/reports/stats.
func (h *LoansHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.Stats(r.Context(), h.DB, "")
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
