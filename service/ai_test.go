package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ankitupadhyayx/medicollab-backend/config"
	"github.com/ankitupadhyayx/medicollab-backend/model"
)

func summarizeTestRecord() *model.Record {
	return &model.Record{
		ID:          "rec-1",
		Title:       "CBC Panel",
		Description: "routine blood work",
		RecordType:  model.TypeLabReport,
		Attachments: []model.Attachment{{OriginalName: "cbc.pdf"}},
	}
}

func TestHTTPAIClientSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/summarize" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Missing bearer token, got %q", r.Header.Get("Authorization"))
		}

		var req aiSummarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Title != "CBC Panel" {
			t.Errorf("Expected title CBC Panel, got %s", req.Title)
		}
		if len(req.Attachments) != 1 || req.Attachments[0] != "cbc.pdf" {
			t.Errorf("Unexpected attachments: %v", req.Attachments)
		}

		resp := aiSummarizeResponse{}
		resp.Data.Summary = "all values within normal range"
		resp.Data.KeyFindings = []string{"hemoglobin normal", "WBC normal"}
		resp.Data.Severity = "low"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPAIClient(&config.AIConfig{
		APIURL:         server.URL,
		APIToken:       "test-token",
		TimeoutSeconds: 5,
	})

	ann, err := client.Summarize(context.Background(), summarizeTestRecord())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if ann.Summary != "all values within normal range" {
		t.Errorf("Unexpected summary: %s", ann.Summary)
	}
	if len(ann.KeyFindings) != 2 {
		t.Errorf("Expected 2 key findings, got %d", len(ann.KeyFindings))
	}
	if ann.Severity != model.SeverityLow {
		t.Errorf("Expected severity low, got %s", ann.Severity)
	}
}

func TestHTTPAIClientSummarizeUnknownSeverity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := aiSummarizeResponse{}
		resp.Data.Summary = "summary"
		resp.Data.Severity = "apocalyptic"
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPAIClient(&config.AIConfig{APIURL: server.URL, TimeoutSeconds: 5})

	ann, err := client.Summarize(context.Background(), summarizeTestRecord())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	// Unknown severities degrade to low rather than failing.
	if ann.Severity != model.SeverityLow {
		t.Errorf("Expected severity low, got %s", ann.Severity)
	}
}

func TestHTTPAIClientSummarizeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(aiSummarizeResponse{Code: 42, Message: "model overloaded"})
	}))
	defer server.Close()

	client := NewHTTPAIClient(&config.AIConfig{APIURL: server.URL, TimeoutSeconds: 5})

	if _, err := client.Summarize(context.Background(), summarizeTestRecord()); err == nil {
		t.Error("Expected error for non-zero API code")
	}
}

func TestHTTPAIClientSummarizeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPAIClient(&config.AIConfig{APIURL: server.URL, TimeoutSeconds: 5})

	if _, err := client.Summarize(context.Background(), summarizeTestRecord()); err == nil {
		t.Error("Expected error for HTTP 502")
	}
}

func TestHTTPAIClientSummarizeUnreachable(t *testing.T) {
	client := NewHTTPAIClient(&config.AIConfig{APIURL: "http://127.0.0.1:1", TimeoutSeconds: 1})

	if _, err := client.Summarize(context.Background(), summarizeTestRecord()); err == nil {
		t.Error("Expected error for unreachable collaborator")
	}
}
