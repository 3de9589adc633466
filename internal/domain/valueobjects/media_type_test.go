package valueobjects

import "testing"

func TestNewMediaKind(t *testing.T) {
	tests := []struct {
		input string
		want  MediaKind
	}{
		{"document", MediaKindDocument},
		{" Video ", MediaKindVideo},
		{"AUDIO", MediaKindAudio},
		{"", MediaKindUnknown},
		{"photo", MediaKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NewMediaKind(tt.input); got != tt.want {
				t.Errorf("NewMediaKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveUploadKind(t *testing.T) {
	if got := ResolveUploadKind("", MediaKindVideo); got != MediaKindVideo {
		t.Errorf("empty preference should keep source kind, got %q", got)
	}
	if got := ResolveUploadKind("document", MediaKindVideo); got != MediaKindDocument {
		t.Errorf("preference should win, got %q", got)
	}
	if got := ResolveUploadKind("sticker", MediaKindAudio); got != MediaKindAudio {
		t.Errorf("invalid preference should be ignored, got %q", got)
	}
}

func TestIsQualityExempt(t *testing.T) {
	if !IsQualityExempt(MediaKindDocument, "application/pdf") {
		t.Error("pdf documents are exempt")
	}
	if IsQualityExempt(MediaKindDocument, "video/x-matroska") {
		t.Error("mkv documents are not exempt")
	}
	if IsQualityExempt(MediaKindVideo, "application/pdf") {
		t.Error("only documents can be exempt")
	}
}
