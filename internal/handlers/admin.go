package handlers

import (
	"net/http"

	"github.com/goldentime/records-api/internal/middleware"
	"github.com/goldentime/records-api/internal/models"
	"github.com/goldentime/records-api/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

type doctorsResponse struct {
	Success bool            `json:"success"`
	Doctors []models.Doctor `json:"doctors"`
}

type auditLogsResponse struct {
	Success bool              `json:"success"`
	Logs    []models.AuditLog `json:"logs"`
}

// adminActor names the admin behind the request, "admin" when the guard is off
func adminActor(r *http.Request) services.Actor {
	email, ok := middleware.GetAdminEmail(r.Context())
	if !ok {
		email = "admin"
	}
	return actorFrom(r, email)
}

// Login exchanges the static credentials for an admin token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := bind(r, &req); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Message: services.MsgInvalidAdmin})
		return
	}

	token, err := h.adminService.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Token: token, Message: services.MsgAdminWelcome})
}

// AllDoctors lists every doctor, newest first
func (h *AdminHandler) AllDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.adminService.ListDoctors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if doctors == nil {
		doctors = []models.Doctor{}
	}

	writeJSON(w, http.StatusOK, doctorsResponse{Success: true, Doctors: doctors})
}

// ChangeStatus approves, rejects or resets a doctor
func (h *AdminHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req models.ChangeStatusRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.adminService.ChangeStatus(r.Context(), adminActor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, msg)
}

// ToggleBlock flips the block flag of a doctor
func (h *AdminHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleBlockRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	blocked, err := h.adminService.ToggleBlock(r.Context(), adminActor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, services.BlockMessage(blocked))
}

// AuditLogs lists audit entries, optionally for one resource
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	var q models.AuditQuery
	if err := decodeValues(&q, r.URL.Query()); err != nil {
		writeError(w, r, err)
		return
	}

	logs, err := h.adminService.AuditLogs(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	writeJSON(w, http.StatusOK, auditLogsResponse{Success: true, Logs: logs})
}
