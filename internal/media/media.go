// Package media describes the file handles the image and video pipelines work on.
package media

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// File is a handle on an uploaded or local media file. Name, Size and MIMEType
// are the declared attributes that key the simulator; Open gives the probes
// access to the content.
type File interface {
	Name() string
	Size() int64
	MIMEType() string
	LastModified() time.Time
	Open() (io.ReadSeekCloser, error)
}

// Memory is a File backed by a byte slice, used for HTTP uploads.
type Memory struct {
	FileName string
	MIME     string
	Data     []byte
	Modified time.Time
}

func (m *Memory) Name() string            { return m.FileName }
func (m *Memory) Size() int64             { return int64(len(m.Data)) }
func (m *Memory) MIMEType() string        { return m.MIME }
func (m *Memory) LastModified() time.Time { return m.Modified }

func (m *Memory) Open() (io.ReadSeekCloser, error) {
	return nopCloser{bytes.NewReader(m.Data)}, nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

// Local is a File on disk.
type Local struct {
	path     string
	size     int64
	mime     string
	modified time.Time
}

// OpenLocal stats path and returns a handle. mimeType is the declared type;
// pass "" to derive it from the extension with DetectMIME.
func OpenLocal(path, mimeType string) (*Local, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat media file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("stat media file: %s is a directory", path)
	}
	if mimeType == "" {
		mimeType = DetectMIME(path)
	}
	return &Local{path: path, size: info.Size(), mime: mimeType, modified: info.ModTime()}, nil
}

func (l *Local) Name() string            { return filepath.Base(l.path) }
func (l *Local) Size() int64             { return l.size }
func (l *Local) MIMEType() string        { return l.mime }
func (l *Local) LastModified() time.Time { return l.modified }

func (l *Local) Open() (io.ReadSeekCloser, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	return f, nil
}
