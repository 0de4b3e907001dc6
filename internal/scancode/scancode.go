package scancode

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

// Encoder renders patient deep links as PNG QR codes
type Encoder struct {
	frontendURL string
	size        int
}

// NewEncoder creates an encoder linking into frontendURL
func NewEncoder(frontendURL string) *Encoder {
	return &Encoder{
		frontendURL: strings.TrimRight(frontendURL, "/"),
		size:        256,
	}
}

// PatientLink is the page a scanned code opens
func (e *Encoder) PatientLink(patientID string) string {
	return e.frontendURL + "/doctor/patient/" + url.PathEscape(patientID)
}

// PatientDataURL returns the scan code for a patient as a data URL
func (e *Encoder) PatientDataURL(patientID string) (string, error) {
	png, err := qrcode.Encode(e.PatientLink(patientID), qrcode.Medium, e.size)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
