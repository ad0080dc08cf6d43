// Package journal loads and renders the optional per-day markdown notes
// stored next to the records as data/<DateKey>.md.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/Tiliavir/heatlog/internal/logger"
	"github.com/Tiliavir/heatlog/internal/remote"
	"github.com/Tiliavir/heatlog/internal/timecalc"
)

// DefaultWidth is the word-wrap width used when the terminal width is unknown.
const DefaultWidth = 80

const delimiter = "---"

// Source reads day files below a content base, a URL or a directory.
type Source struct {
	base       string
	httpClient *http.Client
}

// NewSource returns a Source rooted at base. An empty base disables lookups.
func NewSource(base string) *Source {
	return &Source{base: base, httpClient: &http.Client{}}
}

// Location returns where the file for date is expected.
func (s *Source) Location(date string) string {
	if remote.IsURL(s.base) {
		return strings.TrimRight(s.base, "/") + "/data/" + date + ".md"
	}
	return filepath.Join(s.base, "data", date+".md")
}

// Fetch returns the raw markdown for date. A missing file is not an error:
// ok is false and the body is empty.
func (s *Source) Fetch(ctx context.Context, date string) (string, bool, error) {
	if _, err := timecalc.ParseDateKey(date, nil); err != nil {
		return "", false, err
	}
	if s.base == "" {
		return "", false, nil
	}
	loc := s.Location(date)
	data, err := remote.ReadLocation(ctx, s.httpClient, loc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || remote.IsNotFound(err) {
			logger.Debug("no day file", "date", date, "location", loc)
			return "", false, nil
		}
		return "", false, fmt.Errorf("fetching day file for %s: %w", date, err)
	}
	return string(data), true, nil
}

// StripFrontmatter removes a leading ---...--- block. Only a block that
// starts at the very first byte counts; an unterminated block leaves the
// input unchanged.
func StripFrontmatter(md string) string {
	normalized := strings.ReplaceAll(md, "\r\n", "\n")
	if !strings.HasPrefix(normalized, delimiter+"\n") {
		return md
	}
	rest := normalized[len(delimiter)+1:]
	for offset := 0; offset < len(rest); {
		end := strings.IndexByte(rest[offset:], '\n')
		line := rest[offset:]
		if end >= 0 {
			line = rest[offset : offset+end]
		}
		if strings.TrimRight(line, " \t") == delimiter {
			if end < 0 {
				return ""
			}
			return rest[offset+end+1:]
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return md
}

// Render strips frontmatter and renders md for the terminal. style is a
// glamour style name ("auto", "dark", "light", "notty"); width <= 0 uses
// DefaultWidth.
func Render(md, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(StripFrontmatter(md))
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
