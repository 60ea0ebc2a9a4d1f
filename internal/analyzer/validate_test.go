package analyzer_test

import (
	"errors"
	"testing"

	"github.com/raysh454/vexora/internal/analyzer"
	"github.com/raysh454/vexora/internal/media"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	big := &sizedFile{Memory: media.Memory{FileName: "long.mp4", MIME: "video/mp4"}, size: analyzer.MaxVideoSize + 1}

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"blank url", analyzer.ValidateURL("  \t"), analyzer.ErrEmptyInput},
		{"url", analyzer.ValidateURL("example.com"), nil},
		{"blank text", analyzer.ValidateText("   "), analyzer.ErrEmptyInput},
		{"short text", analyzer.ValidateText("  hi there  "), analyzer.ErrTextTooShort},
		{"text", analyzer.ValidateText("hello there"), nil},
		{"not an image", analyzer.ValidateImage(&media.Memory{FileName: "a.pdf", MIME: "application/pdf"}), analyzer.ErrNotImage},
		{"image", analyzer.ValidateImage(&media.Memory{FileName: "a.png", MIME: "image/png"}), nil},
		{"not a video", analyzer.ValidateVideo(&media.Memory{FileName: "a.png", MIME: "image/png"}), analyzer.ErrNotVideo},
		{"video too large", analyzer.ValidateVideo(big), analyzer.ErrFileTooLarge},
		{"video", analyzer.ValidateVideo(&media.Memory{FileName: "a.mp4", MIME: "video/mp4"}), nil},
	}
	for _, tc := range cases {
		if tc.want == nil {
			if tc.err != nil {
				t.Errorf("%s: unexpected error %v", tc.name, tc.err)
			}
			continue
		}
		if !errors.Is(tc.err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, tc.err, tc.want)
		}
	}
}

// sizedFile reports a declared size without allocating it.
type sizedFile struct {
	media.Memory
	size int64
}

func (s *sizedFile) Size() int64 { return s.size }
