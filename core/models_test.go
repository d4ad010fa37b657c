package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestFileHash(t *testing.T) {
	h1 := FileHash("report.pdf", "abc123")
	h2 := FileHash("report.pdf", "abc123")

	if h1 != h2 {
		t.Errorf("FileHash() not deterministic: %s vs %s", h1, h2)
	}
	if len(h1) != 32 {
		t.Errorf("FileHash() length = %d, want 32 hex chars", len(h1))
	}

	h3 := FileHash("report.pdf", "def456")
	if h1 == h3 {
		t.Errorf("FileHash() produced same hash for different identifiers")
	}

	h4 := FileHash("other.pdf", "abc123")
	if h1 == h4 {
		t.Errorf("FileHash() produced same hash for different filenames")
	}
}

func TestDocumentStatus_String(t *testing.T) {
	tests := []struct {
		name   string
		status DocumentStatus
		want   string
	}{
		{name: "processing", status: StatusProcessing, want: "PROCESSING"},
		{name: "completed", status: StatusCompleted, want: "COMPLETED"},
		{name: "failed", status: StatusFailed, want: "FAILED"},
		{name: "unknown", status: DocumentStatus(99), want: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("DocumentStatus.String() = %q, want %q", got, tt.want)
			}
		})
	}
}
