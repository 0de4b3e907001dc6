package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/goldentime/records-api/internal/middleware"
	"github.com/goldentime/records-api/internal/models"
	"github.com/goldentime/records-api/internal/services"
)

type PatientHandler struct {
	patientService *services.PatientService
}

func NewPatientHandler(patientService *services.PatientService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
	}
}

type qrResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	QRCode  string `json:"qrCode"`
}

// Sync mirrors a patient after it was written to the ledger
func (h *PatientHandler) Sync(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetDoctorID(r.Context())
	if !ok {
		writeError(w, r, services.NewValidationError("Doctor ID not found"))
		return
	}

	var req models.SyncPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, services.NewValidationError("Invalid request body"))
		return
	}
	if err := validateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}

	qr, err := h.patientService.Sync(r.Context(), actorFrom(r, doctorID.String()), doctorID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, qrResponse{Success: true, Message: services.MsgPatientSynced, QRCode: qr})
}

// QRCode looks up the scan code of a patient by wallet and/or email
func (h *PatientHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	var lookup models.QRLookup
	if err := decodeValues(&lookup, r.URL.Query()); err != nil {
		writeError(w, r, err)
		return
	}

	qr, err := h.patientService.QRCode(r.Context(), lookup)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, qrResponse{Success: true, QRCode: qr})
}
