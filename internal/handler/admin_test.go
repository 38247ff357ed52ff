package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envis/envis/internal/auth"
	"github.com/envis/envis/internal/handler/dto"
	"github.com/envis/envis/internal/metrics"
)

type fakeRevoker struct {
	revoked map[string]time.Time
	err     error
}

func (f *fakeRevoker) RevokeToken(_ context.Context, tokenID string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	if f.revoked == nil {
		f.revoked = make(map[string]time.Time)
	}
	f.revoked[tokenID] = expiresAt
	return nil
}

const testAdminPassword = "correct horse battery staple"

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager([]byte("test-secret"), time.Hour)
}

func TestAdminHandler_Login(t *testing.T) {
	tokens := newTestTokens()
	recorder := metrics.NewInMemory()
	h := NewAdminHandler(testAdminPassword, tokens, &fakeRevoker{}, recorder, Options{})

	rec := httptest.NewRecorder()
	h.Login(rec, newJSONRequest(http.MethodPost, "/api/admin/login", `{"password":"`+testAdminPassword+`"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.AdminLoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.AdminSubject, claims.Subject)
	assert.Equal(t, uint64(1), recorder.Snapshot().AdminLoginsSucceeded)
}

func TestAdminHandler_LoginWrongPassword(t *testing.T) {
	recorder := metrics.NewInMemory()
	h := NewAdminHandler(testAdminPassword, newTestTokens(), &fakeRevoker{}, recorder, Options{})

	rec := httptest.NewRecorder()
	h.Login(rec, newJSONRequest(http.MethodPost, "/api/admin/login", `{"password":"guess"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "INVALID_PASSWORD", resp.Code)
	assert.Equal(t, "Invalid password", resp.Error)
	assert.Equal(t, uint64(1), recorder.Snapshot().AdminLoginsFailed)
}

func TestAdminHandler_LoginMissingPassword(t *testing.T) {
	h := NewAdminHandler(testAdminPassword, newTestTokens(), &fakeRevoker{}, nil, Options{})

	rec := httptest.NewRecorder()
	h.Login(rec, newJSONRequest(http.MethodPost, "/api/admin/login", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
}

func TestAdminHandler_Logout(t *testing.T) {
	tokens := newTestTokens()
	issued, err := tokens.Issue()
	require.NoError(t, err)
	claims, err := tokens.Verify(issued.Token)
	require.NoError(t, err)

	t.Run("revokes presented token", func(t *testing.T) {
		revoker := &fakeRevoker{}
		h := NewAdminHandler(testAdminPassword, tokens, revoker, nil, Options{})

		req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
		req = req.WithContext(auth.ContextWithAdmin(req.Context(), claims))
		rec := httptest.NewRecorder()
		h.Logout(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		require.Contains(t, revoker.revoked, issued.ID)
		assert.WithinDuration(t, issued.ExpiresAt, revoker.revoked[issued.ID], time.Second)
	})

	t.Run("without claims", func(t *testing.T) {
		h := NewAdminHandler(testAdminPassword, tokens, &fakeRevoker{}, nil, Options{})
		rec := httptest.NewRecorder()
		h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revocation store failure", func(t *testing.T) {
		h := NewAdminHandler(testAdminPassword, tokens, &fakeRevoker{err: errors.New("redis down")}, nil, Options{})
		req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
		req = req.WithContext(auth.ContextWithAdmin(req.Context(), claims))
		rec := httptest.NewRecorder()
		h.Logout(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "LOGOUT_FAILED", decodeError(t, rec).Code)
	})
}
