package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestUploadSendsMultipartFileField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "resume.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"message": "Resume uploaded and analyzed successfully!",
			"ats_report": {
				"score": "78/100",
				"missing_keywords": ["Kubernetes"],
				"formatting_issues": [],
				"summary": "Decent resume."
			}
		}`))
	})

	report, err := client.Upload(context.Background(), "resume.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "78/100", string(report.Score))
	assert.Equal(t, []string{"Kubernetes"}, report.MissingKeywords)
	assert.Equal(t, "Decent resume.", report.Summary)
}

func TestChatSendsOnlyLatestQuestion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "tell me about goroutines", r.FormValue("question"))
		assert.Len(t, r.MultipartForm.Value, 1)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "Goroutines are lightweight."}`))
	})

	answer, err := client.Chat(context.Background(), "tell me about goroutines")
	require.NoError(t, err)
	assert.Equal(t, "Goroutines are lightweight.", answer)
}

func TestChatSurfacesServerErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusInternalServerError)
	})

	_, err := client.Chat(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestDashboardDecodesRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/dashboard", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "user_question": "q1", "ai_response": "a1", "score": "8", "created_at": "2026-08-01T10:00:00Z"},
			{"id": 2, "user_question": "q2", "ai_response": "a2", "score": 6, "created_at": "2026-08-02T10:00:00Z"}
		]`))
	})

	records, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, "8", string(records[0].Score))
	assert.Equal(t, "6", string(records[1].Score))
}

func TestDashboardTreatsNonArrayBodyAsEmptyHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"detail": "no interviews yet"}`))
	})

	records, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenerateReportDecodesCard(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/generate_report", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"communication": "4/5",
			"technical": "3/5",
			"confidence": "4/5",
			"feedback": "Good pace, shallow on databases.",
			"improvements": ["SQL tuning"],
			"ats_score": "78/100",
			"missing_skills": ["Kubernetes"]
		}`))
	})

	card, err := client.GenerateReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4/5", string(card.Communication))
	assert.Equal(t, "3/5", string(card.Technical))
	assert.Equal(t, "Good pace, shallow on databases.", card.Feedback)
	assert.Equal(t, []string{"SQL tuning"}, card.Improvements)
	assert.Equal(t, "78/100", string(card.ATSScore))
}

func TestRequestsHonorContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and cancels
		// r.Context() when the client goes away; otherwise Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, "hello")
	require.Error(t, err)
}
