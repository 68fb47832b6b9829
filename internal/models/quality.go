package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// QualityKind selects the download format family.
type QualityKind int

const (
	QualityBest QualityKind = iota
	QualityHeight
	QualityAudioOnly
)

// HeightTiers lists the accepted maximum heights.
var HeightTiers = []int{144, 240, 360, 480, 720, 1080, 1440, 2160}

// Quality is a format selector: best available, capped at a height, or audio only.
type Quality struct {
	Kind   QualityKind
	Height int
}

// Best selects the best audio and video.
func Best() Quality { return Quality{Kind: QualityBest} }

// AudioOnly selects the best audio stream.
func AudioOnly() Quality { return Quality{Kind: QualityAudioOnly} }

// Height caps the video height at h.
func Height(h int) Quality { return Quality{Kind: QualityHeight, Height: h} }

// ParseQuality reads "best", "audio" or a height tier such as "720" or "1080p".
func ParseQuality(s string) (Quality, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "", "best":
		return Best(), nil
	case "audio", "audio-only", "audioonly", "mp3":
		return AudioOnly(), nil
	}

	h, err := strconv.Atoi(strings.TrimSuffix(v, "p"))
	if err != nil {
		return Quality{}, fmt.Errorf("unrecognized quality %q (want best, audio, or one of %v)", s, HeightTiers)
	}
	if !slices.Contains(HeightTiers, h) {
		return Quality{}, fmt.Errorf("unsupported height %d (want one of %v)", h, HeightTiers)
	}
	return Height(h), nil
}

// String returns the form ParseQuality accepts.
func (q Quality) String() string {
	switch q.Kind {
	case QualityHeight:
		return strconv.Itoa(q.Height) + "p"
	case QualityAudioOnly:
		return "audio"
	default:
		return "best"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(b []byte) error {
	parsed, err := ParseQuality(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
