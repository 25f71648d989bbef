package evidence_test

import (
	"errors"
	"testing"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/evidence"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		head     []byte
		wantType evidence.FileType
		wantMIME string
		wantErr  error
	}{
		{
			name:     "jpeg",
			head:     []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10},
			wantType: evidence.TypeJPEG,
			wantMIME: "image/jpeg",
		},
		{
			name:     "png",
			head:     []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
			wantType: evidence.TypePNG,
			wantMIME: "image/png",
		},
		{
			name:     "webp",
			head:     append([]byte("RIFF"), append([]byte{0, 0, 0, 0}, []byte("WEBP")...)...),
			wantType: evidence.TypeWEBP,
			wantMIME: "image/webp",
		},
		{
			name:     "pdf",
			head:     []byte("%PDF-1.7\n"),
			wantType: evidence.TypePDF,
			wantMIME: "application/pdf",
		},
		{
			name:    "riff without webp marker",
			head:    append([]byte("RIFF"), append([]byte{0, 0, 0, 0}, []byte("WAVE")...)...),
			wantErr: evidence.ErrUnsupportedType,
		},
		{
			name:    "svg is refused",
			head:    []byte(`<svg xmlns="http://www.w3.org/2000/svg">`),
			wantErr: evidence.ErrUnsupportedType,
		},
		{
			name:    "empty",
			head:    nil,
			wantErr: evidence.ErrUnsupportedType,
		},
		{
			name:    "truncated png magic",
			head:    []byte{0x89, 'P', 'N'},
			wantErr: evidence.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, mime, err := evidence.Detect(tt.head)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ft != tt.wantType || mime != tt.wantMIME {
				t.Fatalf("got (%s, %s), want (%s, %s)", ft, mime, tt.wantType, tt.wantMIME)
			}
		})
	}
}
