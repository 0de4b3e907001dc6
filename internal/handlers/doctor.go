package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/goldentime/records-api/internal/middleware"
	"github.com/goldentime/records-api/internal/models"
	"github.com/goldentime/records-api/internal/services"
	"github.com/rs/zerolog/log"
)

const (
	degreeField  = "degreeCertificate"
	licenseField = "medicalLicense"
)

type DoctorHandler struct {
	doctorService  *services.DoctorService
	maxUploadBytes int64
}

func NewDoctorHandler(doctorService *services.DoctorService, maxUploadBytes int64) *DoctorHandler {
	return &DoctorHandler{
		doctorService:  doctorService,
		maxUploadBytes: maxUploadBytes,
	}
}

type profileResponse struct {
	Success    bool           `json:"success"`
	DoctorData *models.Doctor `json:"doctorData"`
}

func actorFrom(r *http.Request, id string) services.Actor {
	return services.Actor{
		ID:        id,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

// Register accepts the multipart registration form with both credential documents
func (h *DoctorHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadBytes+maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, services.NewValidationError("Request body too large"))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			writeError(w, r, services.NewValidationError("Invalid form body"))
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	degree, err := h.credentialFile(r, degreeField)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if degree != nil {
		defer degree.Close()
	}
	license, err := h.credentialFile(r, licenseField)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if license != nil {
		defer license.Close()
	}
	if degree == nil || license == nil {
		writeError(w, r, services.NewValidationError("Credential files missing"))
		return
	}

	var req models.DoctorRegisterRequest
	if err := decodeValues(&req, r.Form); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}

	files := services.CredentialFiles{DegreeCertificate: degree, MedicalLicense: license}
	if _, err := h.doctorService.Register(r.Context(), actorFrom(r, ""), req, files); err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, services.MsgRegistrationQueued)
}

// credentialFile returns the named upload, nil when absent
func (h *DoctorHandler) credentialFile(r *http.Request, field string) (multipart.File, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	header := r.MultipartForm.File[field][0]
	if header.Size > h.maxUploadBytes {
		return nil, services.NewValidationError(fmt.Sprintf("%s exceeds the %d MB limit", field, h.maxUploadBytes>>20))
	}
	file, err := header.Open()
	if err != nil {
		log.Error().Err(err).Str("field", field).Msg("Failed to open uploaded file")
		return nil, services.NewValidationError("Credential files missing")
	}
	return file, nil
}

// Login checks email and wallet and mails a security code
func (h *DoctorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.DoctorLoginRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, services.NewValidationError("Email and Wallet Address are required for authentication."))
		return
	}

	if err := h.doctorService.Login(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, services.MsgOTPDispatched)
}

// VerifyOTP exchanges a security code for a session token
func (h *DoctorHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, services.NewValidationError(services.MsgInvalidOTP))
		return
	}

	res, err := h.doctorService.VerifyOTP(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Token: res.Token, Message: res.Message})
}

// GetProfile returns the doctor behind the session
func (h *DoctorHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetDoctorID(r.Context())
	if !ok {
		writeError(w, r, services.NewValidationError("Doctor ID not found"))
		return
	}

	doctor, err := h.doctorService.Profile(r.Context(), doctorID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{Success: true, DoctorData: doctor})
}
