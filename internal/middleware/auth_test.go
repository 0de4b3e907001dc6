package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goldentime/records-api/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorAuth_AttachesDoctorID(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	id := uuid.New()
	token, err := tokens.IssueDoctorToken(id)
	require.NoError(t, err)

	var got uuid.UUID
	handler := DoctorAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = GetDoctorID(r.Context())
		assert.True(t, ok)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, got)
}

func TestDoctorAuth_Rejects(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	handler := DoctorAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for header, want := range map[string]string{
		"":              msgNoToken,
		"Token abc":     msgNoToken,
		"Bearer ":       msgNoToken,
		"Bearer abc.de": msgInvalidToken,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Contains(t, rec.Body.String(), want, header)
	}
}

func TestAdminAuth(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	adminToken, err := tokens.IssueAdminToken("admin@goldentime.health")
	require.NoError(t, err)
	doctorToken, err := tokens.IssueDoctorToken(uuid.New())
	require.NoError(t, err)

	handler := AdminAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := GetAdminEmail(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "admin@goldentime.health", email)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+doctorToken)
	rec = httptest.NewRecorder()
	AdminAuth(tokens)(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal Server Error"}`, rec.Body.String())
}
