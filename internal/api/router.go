package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	booksHandler := &BooksHandler{DB: db}
	studentsHandler := &StudentsHandler{DB: db}
	portalHandler := &PortalHandler{DB: db, JWTSecret: jwtSecret}
	loansHandler := &LoansHandler{DB: db}
	settingsHandler := &SettingsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	librarian := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireLibrarian(h))
	}

	// Public: logins and self-service registration.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/portal/register", portalHandler.Register)
	mux.HandleFunc("POST /api/portal/login", portalHandler.Login)

	// Authenticated (any role).
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Librarian session.
	mux.Handle("PUT /api/auth/password", librarian(authHandler.ChangePassword))

	// Catalog.
	mux.Handle("GET /api/books", librarian(booksHandler.List))
	mux.Handle("POST /api/books", librarian(booksHandler.Create))
	mux.Handle("GET /api/books/search", librarian(booksHandler.Search))
	mux.Handle("GET /api/books/lookup/{token}", librarian(booksHandler.Lookup))
	mux.Handle("GET /api/books/{id}", librarian(booksHandler.Get))
	mux.Handle("PUT /api/books/{id}", librarian(booksHandler.Update))
	mux.Handle("DELETE /api/books/{id}", librarian(booksHandler.Delete))
	mux.Handle("PUT /api/books/{id}/cover", librarian(booksHandler.UploadCover))
	mux.Handle("GET /api/books/{id}/cover", librarian(booksHandler.GetCover))

	// Roster.
	mux.Handle("GET /api/students", librarian(studentsHandler.List))
	mux.Handle("POST /api/students", librarian(studentsHandler.Create))
	mux.Handle("GET /api/students/lookup/{admission_no}", librarian(studentsHandler.Lookup))
	mux.Handle("GET /api/students/{id}", librarian(studentsHandler.Get))
	mux.Handle("PUT /api/students/{id}", librarian(studentsHandler.Update))
	mux.Handle("DELETE /api/students/{id}", librarian(studentsHandler.Delete))
	mux.Handle("GET /api/students/{id}/loans", librarian(studentsHandler.StudentLoans))

	// Portal administration.
	mux.Handle("GET /api/portal/pending", librarian(portalHandler.ListPending))
	mux.Handle("POST /api/portal/{admission_no}/approve", librarian(portalHandler.Approve))
	mux.Handle("POST /api/portal/{admission_no}/reject", librarian(portalHandler.Reject))
	mux.Handle("PUT /api/portal/{admission_no}/password", librarian(portalHandler.ResetPassword))

	// Portal self-service (student session).
	mux.Handle("GET /api/portal/loans", authMW(http.HandlerFunc(portalHandler.MyLoans)))
	mux.Handle("PUT /api/portal/password", authMW(http.HandlerFunc(portalHandler.ChangePassword)))

	// Loan lifecycle and reports.
	mux.Handle("POST /api/loans", librarian(loansHandler.Issue))
	mux.Handle("POST /api/loans/return", librarian(loansHandler.Return))
	mux.Handle("GET /api/loans/active", librarian(loansHandler.Active))
	mux.Handle("GET /api/loans/overdue", librarian(loansHandler.Overdue))
	mux.Handle("GET /api/loans/history", librarian(loansHandler.History))
	mux.Handle("GET /api/loans/{id}", librarian(loansHandler.Get))
	mux.Handle("PUT /api/loans/{id}/due-date", librarian(loansHandler.Extend))
	mux.Handle("GET /api/reports/top-books", librarian(loansHandler.TopBooks))
	mux.Handle("GET /api/reports/top-students", librarian(loansHandler.TopStudents))
	mux.Handle("GET /api/reports/stats", librarian(loansHandler.Stats))

	// Settings.
	mux.Handle("GET /api/settings/loan-days", librarian(settingsHandler.GetLoanDays))
	mux.Handle("PUT /api/settings/loan-days", librarian(settingsHandler.SetLoanDays))

	return mux
}
