package api

import (
	"database/sql"
	"net/http"
	"time"
)

// NewRouter creates the API router with all endpoints registered.
// tz is the time zone quota windows are evaluated in.
func NewRouter(db *sql.DB, jwtSecret string, tz *time.Location) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	departmentsHandler := &DepartmentsHandler{DB: db}
	typesHandler := &TypesHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, TZ: tz}
	recordsHandler := &RecordsHandler{DB: db, TZ: tz}
	adjustmentsHandler := &AdjustmentsHandler{DB: db, TZ: tz}
	scanHandler := &ScanHandler{DB: db, TZ: tz}

	authMW := AuthMiddleware(jwtSecret, db)
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(RequireAdmin(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return authMW(http.HandlerFunc(h))
	}

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Departments: read (all roles), write (admin).
	mux.Handle("GET /api/departments", authed(departmentsHandler.List))
	mux.Handle("POST /api/departments", admin(departmentsHandler.Create))
	mux.Handle("PUT /api/departments/{id}", admin(departmentsHandler.Update))
	mux.Handle("DELETE /api/departments/{id}", admin(departmentsHandler.Delete))

	// Consumption types: read (all roles), write (admin).
	mux.Handle("GET /api/types", authed(typesHandler.List))
	mux.Handle("POST /api/types", admin(typesHandler.Create))
	mux.Handle("GET /api/types/{id}", authed(typesHandler.Get))
	mux.Handle("PUT /api/types/{id}", admin(typesHandler.Update))
	mux.Handle("DELETE /api/types/{id}", admin(typesHandler.Delete))

	// Items: read (all roles), write (admin).
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("POST /api/items", admin(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", admin(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", admin(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/photo", admin(itemsHandler.UploadPhoto))
	mux.Handle("GET /api/items/{id}/photo", authed(itemsHandler.GetPhoto))
	mux.Handle("GET /api/items/{id}/adjustments", admin(itemsHandler.ListAdjustments))

	// Records: take (all roles), list scoped by role.
	mux.Handle("POST /api/records", authed(recordsHandler.Create))
	mux.Handle("GET /api/records", authed(recordsHandler.List))
	mux.Handle("GET /api/records/{id}/photo", authed(recordsHandler.GetPhoto))

	// Stock adjustments (admin only).
	mux.Handle("POST /api/adjustments", admin(adjustmentsHandler.Create))

	// Scan (all roles).
	mux.Handle("POST /api/scan", authed(scanHandler.Scan))

	return mux
}
