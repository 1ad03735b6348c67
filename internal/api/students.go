package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/libreshelf/libreshelf/internal/model"
	"github.com/libreshelf/libreshelf/internal/store"
)

// StudentsHandler handles roster endpoints.
type StudentsHandler struct {
	DB *sql.DB
}

type studentRequest struct {
	AdmissionNo string `json:"admission_no"`
	Name        string `json:"name"`
	Batch       string `json:"batch"`
}

// List handles GET /api/students.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	students, pageInfo, err := store.ListStudents(r.Context(), h.DB, q.Get("q"), page, perPage)
	if err != nil {
		storeError(w, err)
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"students": students,
		"page":     pageInfo,
	})
}

// Create handles POST /api/students.
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := store.CreateStudent(r.Context(), h.DB, req.AdmissionNo, req.Name, req.Batch)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, student)
}

// Get handles GET /api/students/{id}.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	student, err := store.GetStudent(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if student == nil {
		jsonError(w, http.StatusNotFound, "student not found")
		return
	}

	jsonResponse(w, http.StatusOK, student)
}

// Lookup handles GET /api/students/lookup/{admission_no}: the
// issue/return autofill box.
func (h *StudentsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	student, err := store.FindStudentByAdmissionNo(r.Context(), h.DB, r.PathValue("admission_no"))
	if err != nil {
		storeError(w, err)
		return
	}
	if student == nil {
		jsonError(w, http.StatusNotFound, "student not found")
		return
	}
	jsonResponse(w, http.StatusOK, student)
}

// Update handles PUT /api/students/{id}.
func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := store.UpdateStudent(r.Context(), h.DB, id, req.AdmissionNo, req.Name, req.Batch)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, student)
}

// Delete handles DELETE /api/students/{id}. Blocked while the student
// holds an active loan.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	if err := store.DeleteStudent(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "student deleted"})
}

// StudentLoans handles GET /api/students/{id}/loans.
func (h *StudentsHandler) StudentLoans(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	loans, err := store.StudentLoans(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	jsonResponse(w, http.StatusOK, loans)
}
