package specreg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/sectioning/internal/app/sectioning"
	"github.com/campusflow/sectioning/internal/pkg/apperrors"
)

func TestFormatStudentID(t *testing.T) {
	assert.Equal(t, "000012345", FormatStudentID("12345"))
	assert.Equal(t, "123456789", FormatStudentID("123456789"))
	assert.Equal(t, "00000000A", FormatStudentID("A"))
}

func TestAPITime(t *testing.T) {
	t.Run("marshals as UTC with Z layout", func(t *testing.T) {
		ts := APITime{Time: time.Date(2026, 8, 24, 14, 30, 0, 0, time.UTC)}
		data, err := json.Marshal(ts)
		require.NoError(t, err)
		assert.Equal(t, `"2026-08-24T14:30:00Z"`, string(data))
	})

	t.Run("accepts both layouts", func(t *testing.T) {
		var ts APITime
		require.NoError(t, json.Unmarshal([]byte(`"2026-08-24T14:30:00Z"`), &ts))
		assert.Equal(t, 14, ts.Hour())

		require.NoError(t, json.Unmarshal([]byte(`"2026-08-24 14:30:00"`), &ts))
		assert.Equal(t, 14, ts.Hour())
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		var ts APITime
		assert.Error(t, json.Unmarshal([]byte(`"24.08.2026"`), &ts))
	})
}

func TestProvider_Submit(t *testing.T) {
	var got SpecialRegistrationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "banner", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "key-123", r.URL.Query().Get("apiKey"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(SpecialRegistrationResponse{
			Status:        StatusSuccess,
			RequestID:     "REQ-1",
			RequestStatus: RequestStatusMayEdit,
		})
	}))
	defer server.Close()

	provider := NewProvider(Config{
		SubmitURL:       server.URL + "/submit",
		User:            "banner",
		Password:        "secret",
		APIKeyParameter: "apiKey",
		APIKeyValue:     "key-123",
	}, zerolog.Nop())

	response, err := provider.Submit(context.Background(), &SpecialRegistrationRequest{
		Term:      "202710",
		Campus:    "MAIN",
		StudentID: FormatStudentID("9001"),
		Changes: []sectioning.Change{
			{Subject: "CS", CourseNbr: "101", CRN: "1003", Operation: sectioning.OperationAdd},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "REQ-1", response.RequestID)
	assert.Equal(t, RequestStatusMayEdit, response.RequestStatus)
	assert.Equal(t, "000009001", got.StudentID)
	require.Len(t, got.Changes, 1)
	assert.Equal(t, "1003", got.Changes[0].CRN)
}

func TestProvider_SubmitFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(SpecialRegistrationResponse{
			Status:  StatusFailure,
			Message: "student has a hold",
		})
	}))
	defer server.Close()

	provider := NewProvider(Config{SubmitURL: server.URL}, zerolog.Nop())
	_, err := provider.Submit(context.Background(), &SpecialRegistrationRequest{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSpecRegFailed))
	assert.Contains(t, err.Error(), "student has a hold")
}

func TestProvider_EligibilityFailureIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(SpecialRegistrationResponse{
			Status:  StatusFailure,
			Message: "not eligible this term",
		})
	}))
	defer server.Close()

	provider := NewProvider(Config{EligibilityURL: server.URL}, zerolog.Nop())
	response, err := provider.CheckEligibility(context.Background(), &SpecialRegistrationRequest{})

	require.NoError(t, err)
	assert.False(t, response.Success())
	assert.Equal(t, "not eligible this term", response.Message)
}

func TestProvider_Retrieve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "REQ-1", r.URL.Query().Get("requestId"))
		assert.Equal(t, "000009001", r.URL.Query().Get("studentId"))

		w.Write([]byte(`{
			"term": "202710", "campus": "MAIN", "studentId": "000009001",
			"requestId": "REQ-1", "status": "pending",
			"submitted": "2026-08-24 14:30:00",
			"changes": [{"subject":"CS","courseNbr":"101","crn":"1003","operation":"ADD"}]
		}`))
	}))
	defer server.Close()

	provider := NewProvider(Config{SubmitURL: server.URL}, zerolog.Nop())
	request, err := provider.Retrieve(context.Background(), "202710", "MAIN", "9001", "REQ-1")

	require.NoError(t, err)
	assert.Equal(t, RequestStatusPending, request.Status)
	require.NotNil(t, request.Submitted)
	assert.Equal(t, 14, request.Submitted.Hour())
	require.Len(t, request.Changes, 1)
	assert.Equal(t, sectioning.OperationAdd, request.Changes[0].Operation)
}

func TestProvider_HasRequests(t *testing.T) {
	t.Run("list response when check is the get-all endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`[{"term":"202710","campus":"MAIN","studentId":"000009001","requestId":"REQ-1"}]`))
		}))
		defer server.Close()

		provider := NewProvider(Config{SubmitURL: server.URL}, zerolog.Nop())
		has, err := provider.HasRequests(context.Background(), "202710", "MAIN", "9001")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("status response on a dedicated check endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/check" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(SpecialRegistrationResponse{Status: StatusFailure})
		}))
		defer server.Close()

		provider := NewProvider(Config{
			SubmitURL: server.URL + "/submit",
			CheckURL:  server.URL + "/check",
		}, zerolog.Nop())
		has, err := provider.HasRequests(context.Background(), "202710", "MAIN", "9001")
		require.NoError(t, err)
		assert.False(t, has)
	})
}

func TestProvider_RemoteErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}))
		defer server.Close()

		provider := NewProvider(Config{SubmitURL: server.URL}, zerolog.Nop())
		_, err := provider.RetrieveAll(context.Background(), "202710", "MAIN", "9001")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrSpecRegFailed))
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status":`))
		}))
		defer server.Close()

		provider := NewProvider(Config{SubmitURL: server.URL}, zerolog.Nop())
		_, err := provider.Retrieve(context.Background(), "202710", "MAIN", "9001", "REQ-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrSpecRegFailed))
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		provider := NewProvider(Config{SubmitURL: "http://127.0.0.1:1/submit", Timeout: time.Second}, zerolog.Nop())
		_, err := provider.Submit(context.Background(), &SpecialRegistrationRequest{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrSpecRegFailed))
	})
}
