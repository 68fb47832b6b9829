// Package playlist lists playlist entries through yt-dlp.
package playlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tubeplus/internal/command/builder"
	"tubeplus/internal/domain/command"
	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/errconsts"
	"tubeplus/internal/models"
	"tubeplus/internal/process"
	"tubeplus/internal/utils/logging"

	"github.com/araddon/dateparse"
)

// Entry is one item of a playlist.
type Entry struct {
	Index      int           `json:"index"`
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	Duration   time.Duration `json:"duration"`
	UploadDate time.Time     `json:"upload_date"`
}

// Listing is a flat playlist as reported by yt-dlp.
type Listing struct {
	ID      string
	Title   string
	URL     string
	Entries []Entry
}

// ytDlpOutput is the subset of yt-dlp -J output used here.
type ytDlpOutput struct {
	Type       string        `json:"_type"`
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	WebpageURL string        `json:"webpage_url"`
	Duration   float64       `json:"duration"`
	UploadDate string        `json:"upload_date"`
	IEKey      string        `json:"ie_key"`
	Entries    []ytDlpOutput `json:"entries"`
}

// Expander runs yt-dlp in listing mode.
type Expander struct {
	Spawner  process.Spawner
	ToolPath string
	Options  builder.Options
	Timeout  time.Duration
	// MaxOutput caps the bytes read from the listing.
	MaxOutput int64
}

// NewExpander returns an Expander with a bounded listing wait.
func NewExpander(spawner process.Spawner, toolPath string, opts builder.Options, timeout time.Duration) *Expander {
	if toolPath == "" {
		toolPath = command.YTDLP
	}
	if timeout <= 0 {
		timeout = consts.DefaultPlaylistTimeout
	}
	return &Expander{
		Spawner:   spawner,
		ToolPath:  toolPath,
		Options:   opts,
		Timeout:   timeout,
		MaxOutput: consts.MaxListingOutput,
	}
}

// Expand lists the entries behind url. A single video yields one entry.
func (e *Expander) Expand(ctx context.Context, url string) (*Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	args := builder.PlaylistArgs(url, e.Options)
	logging.I("Fetching playlist entries for %q", url)

	proc, err := e.Spawner.Spawn(ctx, e.ToolPath, args)
	if err != nil {
		return nil, errconsts.NewTaskError(errconsts.ErrSpawnFailure, url, err)
	}
	guard := process.Acquire(proc)
	defer guard.Release()

	type readResult struct {
		data []byte
		err  error
	}
	limit := e.MaxOutput
	if limit <= 0 {
		limit = consts.MaxListingOutput
	}
	read := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(proc.Output(), limit+1))
		if err == nil && int64(len(data)) > limit {
			err = fmt.Errorf("listing output exceeds %d bytes", limit)
		}
		read <- readResult{data, err}
	}()

	var out readResult
	select {
	case out = <-read:
	case <-ctx.Done():
		guard.Kill()
		return nil, fmt.Errorf("listing %q: %w", url, ctx.Err())
	}
	if out.err != nil {
		return nil, errconsts.NewTaskError(errconsts.ErrIOFailure, url, out.err)
	}

	code, err := guard.Wait()
	if err != nil {
		return nil, errconsts.NewTaskError(errconsts.ErrIOFailure, url, err)
	}
	if code != 0 {
		return nil, errconsts.NewTaskError(errconsts.ErrAbnormalExit, url, &errconsts.ExitError{Code: code, Tail: lastLines(out.data, consts.OutputTailLines)})
	}

	logging.D(5, "Retrieved listing output for %q:\n\n%s", url, out.data)
	return Decode(out.data, url)
}

// Decode parses yt-dlp -J output. The JSON document is located after any
// warning lines printed before it.
func Decode(data []byte, sourceURL string) (*Listing, error) {
	start := bytes.IndexByte(data, '{')
	if start < 0 {
		return nil, errors.New("no JSON object in yt-dlp output")
	}

	// Trailing stderr output may follow the document.
	var result ytDlpOutput
	if err := json.NewDecoder(bytes.NewReader(data[start:])).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding yt-dlp output: %w", err)
	}

	l := &Listing{
		ID:    result.ID,
		Title: result.Title,
		URL:   firstNonEmpty(result.WebpageURL, sourceURL),
	}

	if result.Type != "playlist" && len(result.Entries) == 0 {
		entry := toEntry(1, result, sourceURL)
		// For a single video "url" may be a direct media link.
		entry.URL = firstNonEmpty(result.WebpageURL, sourceURL, entry.URL)
		l.Entries = []Entry{entry}
		return l, nil
	}

	for _, raw := range result.Entries {
		entry := toEntry(len(l.Entries)+1, raw, "")
		if entry.URL == "" {
			logging.D(2, "Skipping playlist entry %q without a URL", raw.ID)
			continue
		}
		l.Entries = append(l.Entries, entry)
	}
	return l, nil
}

func toEntry(index int, raw ytDlpOutput, fallbackURL string) Entry {
	e := Entry{
		Index:    index,
		ID:       raw.ID,
		Title:    raw.Title,
		URL:      firstNonEmpty(raw.WebpageURL, raw.URL, fallbackURL),
		Duration: time.Duration(raw.Duration * float64(time.Second)),
	}
	if e.URL != "" && !strings.Contains(e.URL, "://") && strings.EqualFold(raw.IEKey, "Youtube") {
		e.URL = "https://www.youtube.com/watch?v=" + e.URL
	}
	if e.URL == "" && raw.ID != "" && strings.EqualFold(raw.IEKey, "Youtube") {
		e.URL = "https://www.youtube.com/watch?v=" + raw.ID
	}
	if raw.UploadDate != "" {
		if t, err := dateparse.ParseIn(raw.UploadDate, time.UTC); err == nil {
			e.UploadDate = t
		} else {
			logging.D(3, "Could not parse upload date %q: %v", raw.UploadDate, err)
		}
	}
	return e
}

// Configs turns entries into task configurations sharing base's settings.
func Configs(entries []Entry, base models.TaskConfig) []models.TaskConfig {
	out := make([]models.TaskConfig, 0, len(entries))
	for _, e := range entries {
		c := base
		c.URL = e.URL
		c.Title = e.Title
		out = append(out, c)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func lastLines(data []byte, n int) []string {
	lines := strings.FieldsFunc(string(data), func(r rune) bool { return r == '\n' || r == '\r' })
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
