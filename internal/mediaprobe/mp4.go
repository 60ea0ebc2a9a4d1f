package mediaprobe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrNoMovieHeader = errors.New("mediaprobe: no mvhd box")
	ErrBadBox        = errors.New("mediaprobe: malformed box")
)

const maxBoxDepth = 4

// MP4Duration returns the presentation duration stored in the moov/mvhd box.
func MP4Duration(r io.ReadSeeker) (time.Duration, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek end: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek start: %w", err)
	}
	return findMovieHeader(r, 0, end, 0)
}

// findMovieHeader walks the boxes in [start, end) looking for moov, then mvhd.
func findMovieHeader(r io.ReadSeeker, start, end int64, depth int) (time.Duration, error) {
	if depth > maxBoxDepth {
		return 0, ErrNoMovieHeader
	}
	pos := start
	var hdr [16]byte
	for pos+8 <= end {
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return 0, fmt.Errorf("seek box: %w", err)
		}
		if _, err := io.ReadFull(r, hdr[:8]); err != nil {
			return 0, fmt.Errorf("read box header: %w", err)
		}
		size := int64(binary.BigEndian.Uint32(hdr[:4]))
		typ := string(hdr[4:8])
		headerLen := int64(8)
		switch size {
		case 0:
			size = end - pos
		case 1:
			if _, err := io.ReadFull(r, hdr[8:16]); err != nil {
				return 0, fmt.Errorf("read large box size: %w", err)
			}
			size = int64(binary.BigEndian.Uint64(hdr[8:16]))
			headerLen = 16
		}
		if size < headerLen || pos+size > end {
			return 0, fmt.Errorf("%w: %q size %d at %d", ErrBadBox, typ, size, pos)
		}

		switch typ {
		case "moov":
			return findMovieHeader(r, pos+headerLen, pos+size, depth+1)
		case "mvhd":
			return readMovieHeader(r, size-headerLen)
		}
		pos += size
	}
	return 0, ErrNoMovieHeader
}

func readMovieHeader(r io.Reader, payload int64) (time.Duration, error) {
	var vf [4]byte
	if payload < 4 {
		return 0, ErrBadBox
	}
	if _, err := io.ReadFull(r, vf[:]); err != nil {
		return 0, fmt.Errorf("read mvhd version: %w", err)
	}

	var timescale uint32
	var units uint64
	switch vf[0] {
	case 0:
		var b [16]byte
		if payload < 4+16 {
			return 0, ErrBadBox
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("read mvhd: %w", err)
		}
		timescale = binary.BigEndian.Uint32(b[8:12])
		units = uint64(binary.BigEndian.Uint32(b[12:16]))
	case 1:
		var b [28]byte
		if payload < 4+28 {
			return 0, ErrBadBox
		}
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("read mvhd: %w", err)
		}
		timescale = binary.BigEndian.Uint32(b[16:20])
		units = binary.BigEndian.Uint64(b[20:28])
	default:
		return 0, fmt.Errorf("%w: mvhd version %d", ErrBadBox, vf[0])
	}
	if timescale == 0 {
		return 0, fmt.Errorf("%w: zero timescale", ErrBadBox)
	}
	// all-ones means unknown duration
	if units == 0xFFFFFFFF || units == 0xFFFFFFFFFFFFFFFF {
		return 0, ErrNoMovieHeader
	}
	secs := float64(units) / float64(timescale)
	return time.Duration(secs * float64(time.Second)), nil
}
