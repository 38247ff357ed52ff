package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envis/envis/internal/handler/dto"
	"github.com/envis/envis/internal/metrics"
	"github.com/envis/envis/internal/service"
	"github.com/envis/envis/internal/testutil/memstore"
)

func newWaitlistHandler(store *memstore.Store, rec *metrics.InMemoryRecorder) *WaitlistHandler {
	svc := service.NewWaitlistService(store, rec)
	return NewWaitlistHandler(svc, rec, Options{})
}

func TestWaitlistHandler_Join(t *testing.T) {
	recorder := metrics.NewInMemory()
	h := newWaitlistHandler(memstore.New(), recorder)

	rec := httptest.NewRecorder()
	h.Join(rec, newJSONRequest(http.MethodPost, "/api/waitlist",
		`{"name":"Jo Bloggs","email":"jo@example.com","familySize":"5+","interests":"screen time"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.JoinWaitlistResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Successfully added to waitlist", resp.Message)
	assert.NotEmpty(t, resp.Entry.ID)
	assert.Equal(t, "jo@example.com", resp.Entry.Email)
	assert.Equal(t, "Jo Bloggs", resp.Entry.Name)
	assert.Equal(t, uint64(1), recorder.Snapshot().SignupsCreated)
}

func TestWaitlistHandler_JoinDuplicate(t *testing.T) {
	h := newWaitlistHandler(memstore.New(), metrics.NewInMemory())
	body := `{"name":"Jo Bloggs","email":"jo@example.com","familySize":"2"}`

	first := httptest.NewRecorder()
	h.Join(first, newJSONRequest(http.MethodPost, "/api/waitlist", body))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	h.Join(second, newJSONRequest(http.MethodPost, "/api/waitlist", body))
	assert.Equal(t, http.StatusConflict, second.Code)
	resp := decodeError(t, second)
	assert.Equal(t, "ALREADY_ON_WAITLIST", resp.Code)
	assert.Equal(t, "This email is already on the waitlist", resp.Error)
}

func TestWaitlistHandler_JoinValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "short name",
			body:    `{"name":"J","email":"jo@example.com","familySize":"2"}`,
			message: `String must contain at least 2 character(s) at "name"`,
		},
		{
			name:    "bad email",
			body:    `{"name":"Jo","email":"not-an-email","familySize":"2"}`,
			message: `Invalid email at "email"`,
		},
		{
			name:    "unknown family size",
			body:    `{"name":"Jo","email":"jo@example.com","familySize":"6"}`,
			message: `Invalid enum value. Expected '1' | '2' | '3' | '4' | '5+' at "familySize"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := metrics.NewInMemory()
			h := newWaitlistHandler(memstore.New(), recorder)

			rec := httptest.NewRecorder()
			h.Join(rec, newJSONRequest(http.MethodPost, "/api/waitlist", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "VALIDATION_ERROR", resp.Code)
			assert.Contains(t, resp.Error, tt.message)
			assert.Equal(t, uint64(1), recorder.Snapshot().SignupsInvalid)
		})
	}
}

func TestWaitlistHandler_JoinStoreFailure(t *testing.T) {
	store := memstore.New()
	store.Err = errors.New("db down")
	h := newWaitlistHandler(store, metrics.NewInMemory())

	rec := httptest.NewRecorder()
	h.Join(rec, newJSONRequest(http.MethodPost, "/api/waitlist",
		`{"name":"Jo Bloggs","email":"jo@example.com","familySize":"2"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to add to waitlist. Please try again.", decodeError(t, rec).Error)
}

func TestWaitlistHandler_List(t *testing.T) {
	h := newWaitlistHandler(memstore.New(), metrics.NewInMemory())

	empty := httptest.NewRecorder()
	h.List(empty, httptest.NewRequest(http.MethodGet, "/api/waitlist", nil))
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `{"entries":[]}`, empty.Body.String())

	for _, email := range []string{"a@example.com", "b@example.com"} {
		rec := httptest.NewRecorder()
		h.Join(rec, newJSONRequest(http.MethodPost, "/api/waitlist",
			`{"name":"Jo Bloggs","email":"`+email+`","familySize":"1"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/waitlist", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Entries []struct {
			Email string `json:"email"`
		} `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "b@example.com", resp.Entries[0].Email)
}
