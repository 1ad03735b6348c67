package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/libreshelf/libreshelf/internal/imaging"
	"github.com/libreshelf/libreshelf/internal/model"
	"github.com/libreshelf/libreshelf/internal/store"
)

// BooksHandler handles catalog endpoints.
type BooksHandler struct {
	DB *sql.DB
}

type bookRequest struct {
	Name     string `json:"name"`
	Author   string `json:"author"`
	CustomID string `json:"custom_id"`
}

// List handles GET /api/books.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	books, pageInfo, err := store.ListBooks(r.Context(), h.DB, q.Get("filter"), q.Get("q"), page, perPage)
	if err != nil {
		storeError(w, err)
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"books": books,
		"page":  pageInfo,
	})
}

// Search handles GET /api/books/search.
func (h *BooksHandler) Search(w http.ResponseWriter, r *http.Request) {
	books, err := store.SearchBooks(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		storeError(w, err)
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	jsonResponse(w, http.StatusOK, books)
}

// Create handles POST /api/books.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := store.CreateBook(r.Context(), h.DB, req.Name, req.Author, req.CustomID)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, book)
}

// Get handles GET /api/books/{id}.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if book == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}

	jsonResponse(w, http.StatusOK, book)
}

// Lookup handles GET /api/books/lookup/{token}: the issue/return
// autofill box. The token may be a numeric ID or a custom ID.
func (h *BooksHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	book, err := store.FindBookByToken(r.Context(), h.DB, r.PathValue("token"))
	if err != nil {
		storeError(w, err)
		return
	}
	if book == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Update handles PUT /api/books/{id}.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := store.UpdateBook(r.Context(), h.DB, id, req.Name, req.Author, req.CustomID)
	if err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{id}. A book on loan cannot be
// deleted.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := store.DeleteBook(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

// UploadCover handles PUT /api/books/{id}/cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("cover")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "cover file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetBookCover(r.Context(), h.DB, id, result.Data, result.MIME); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "cover uploaded"})
}

// GetCover handles GET /api/books/{id}/cover.
func (h *BooksHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	data, mime, err := store.GetBookCover(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no cover")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
