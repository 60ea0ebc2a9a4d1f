package analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/utils"
)

var (
	ErrEmptyInput   = errors.New("input is empty")
	ErrTextTooShort = errors.New("text is too short")
	ErrNotImage     = errors.New("file is not an image")
	ErrNotVideo     = errors.New("file is not a video")
	ErrFileTooLarge = errors.New("file is too large")
)

const (
	// MinTextLength is counted in UTF-16 code units after trimming.
	MinTextLength = 10
	MaxVideoSize  = 100 * 1024 * 1024
)

// Intake checks run before analysis by the CLI and the HTTP API. The analyzers
// themselves accept anything.

func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyInput
	}
	return nil
}

func ValidateText(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyInput
	}
	if n := utils.UTF16Len(trimmed); n < MinTextLength {
		return fmt.Errorf("%w: %d characters, need at least %d", ErrTextTooShort, n, MinTextLength)
	}
	return nil
}

func ValidateImage(f media.File) error {
	if !strings.HasPrefix(f.MIMEType(), "image/") {
		return fmt.Errorf("%w: %s has type %q", ErrNotImage, f.Name(), f.MIMEType())
	}
	return nil
}

func ValidateVideo(f media.File) error {
	if !strings.HasPrefix(f.MIMEType(), "video/") {
		return fmt.Errorf("%w: %s has type %q", ErrNotVideo, f.Name(), f.MIMEType())
	}
	if f.Size() > MaxVideoSize {
		return fmt.Errorf("%w: %s is %s, limit is %s", ErrFileTooLarge, f.Name(),
			utils.FormatFileSize(f.Size()), utils.FormatFileSize(MaxVideoSize))
	}
	return nil
}
