package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kantorid/persediaan/internal/model"
	"github.com/kantorid/persediaan/internal/store"
)

// DepartmentsHandler handles department CRUD endpoints.
type DepartmentsHandler struct {
	DB *sql.DB
}

type departmentRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/departments.
func (h *DepartmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	departments, err := store.ListDepartments(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list departments", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list departments")
		return
	}
	if departments == nil {
		departments = []model.Department{}
	}
	jsonResponse(w, http.StatusOK, departments)
}

// Create handles POST /api/departments.
func (h *DepartmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	department, err := store.CreateDepartment(r.Context(), h.DB, req.Name)
	if err != nil {
		slog.Error("failed to create department", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create department")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("department created", "user", claims.Email, "department", req.Name)
	jsonResponse(w, http.StatusCreated, department)
}

// Update handles PUT /api/departments/{id}.
func (h *DepartmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	var req departmentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	department, err := store.GetDepartment(r.Context(), h.DB, id)
	if err != nil || department == nil || department.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "department not found")
		return
	}

	if err := store.UpdateDepartment(r.Context(), h.DB, id, req.Name); err != nil {
		slog.Error("failed to update department", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update department")
		return
	}

	updated, _ := store.GetDepartment(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/departments/{id}.
func (h *DepartmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	department, err := store.GetDepartment(r.Context(), h.DB, id)
	if err != nil || department == nil || department.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "department not found")
		return
	}

	if err := store.DeleteDepartment(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete department", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete department")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("department deleted", "user", claims.Email, "department", department.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "department deleted"})
}
