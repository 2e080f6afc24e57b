package playlist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"plexorder/internal/shared"
)

// ImportedTrack is one entry of an uploaded playlist export.
// The sequence of ImportedTracks defines the desired target order.
type ImportedTrack struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"` // empty when the export carries no artist
	SourceLine int    `json:"sourceLine"`
}

// ParseResult holds the ordered track list parsed from an export plus
// bookkeeping about rows that were dropped.
type ParseResult struct {
	Tracks []ImportedTrack
	// SkippedRows counts tabular data rows dropped for missing a title.
	// Skips are warnings surfaced with the match preview, never fatal.
	SkippedRows int
}

// Column names recognized (case-insensitive) in tabular exports.
// Apple Music localizes headers, hence the Italian variants.
var (
	titleColumns  = []string{"name", "title", "track name", "nome", "titolo"}
	artistColumns = []string{"artist", "artist name", "artista"}
)

// decodeThresholdPct is the max share of replacement runes tolerated before
// the input is declared undecodable.
const decodeThresholdPct = 5

// DecodeExport converts raw uploaded bytes to text. A UTF-16 byte-order
// mark selects UTF-16 decoding; everything else is treated as UTF-8.
// Returns [shared.ErrEncoding] when too much of the input fails to decode.
func DecodeExport(raw []byte) (string, error) {
	var text string

	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}), bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("%w: UTF-16 decode: %v", shared.ErrEncoding, err)
		}
		text = string(decoded)
	default:
		text = string(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
	}

	total, bad := 0, 0
	for _, r := range text {
		total++
		if r == utf8.RuneError {
			bad++
		}
	}
	if bad >= 4 && bad*100 > total*decodeThresholdPct {
		return "", fmt.Errorf("%w: %d undecodable characters in %d", shared.ErrEncoding, bad, total)
	}

	return text, nil
}

// ParseExport parses raw export bytes into an ordered track list.
//
// A recognized header row triggers a delimited-table parse with columns
// located by name; otherwise each line is read as "Artist - Title" with a
// title-only fallback. Output order is file line order. Returns
// [shared.ErrEmptyPlaylist] when no tracks result.
func ParseExport(raw []byte) (*ParseResult, error) {
	text, err := DecodeExport(raw)
	if err != nil {
		return nil, err
	}

	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, shared.ErrEmptyPlaylist
	}

	delimiter := sniffDelimiter(lines[0].text)

	if result, ok, err := parseTabular(text, delimiter); err != nil {
		return nil, err
	} else if ok {
		return result, nil
	}

	return parseLines(lines)
}

type numberedLine struct {
	num  int // 1-based position in the original file
	text string
}

func splitLines(text string) []numberedLine {
	var lines []numberedLine
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, numberedLine{num: i + 1, text: line})
	}
	return lines
}

// sniffDelimiter picks the table delimiter from the header line. Apple
// Music exports are tab-separated in most locales; tabs are checked first
// so date fields containing commas never confuse the choice.
func sniffDelimiter(header string) rune {
	switch {
	case strings.ContainsRune(header, '\t'):
		return '\t'
	case strings.ContainsRune(header, ';'):
		return ';'
	default:
		return ','
	}
}

// parseTabular attempts a delimited-table parse. The second return value
// reports whether the header row was recognized at all; when false the
// caller falls back to line parsing.
func parseTabular(text string, delimiter rune) (*ParseResult, bool, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, false, nil
	}

	titleIdx, artistIdx := -1, -1
	for i, name := range header {
		name = normalizeHeader(name)
		if titleIdx < 0 && containsName(titleColumns, name) {
			titleIdx = i
		}
		if artistIdx < 0 && containsName(artistColumns, name) {
			artistIdx = i
		}
	}
	if titleIdx < 0 {
		return nil, false, nil
	}

	result := &ParseResult{}
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err != nil {
			break
		}

		title := ""
		if titleIdx < len(record) {
			title = strings.TrimSpace(record[titleIdx])
		}
		if title == "" {
			result.SkippedRows++
			continue
		}

		artist := ""
		if artistIdx >= 0 && artistIdx < len(record) {
			artist = strings.TrimSpace(record[artistIdx])
		}

		result.Tracks = append(result.Tracks, ImportedTrack{
			Title:      title,
			Artist:     artist,
			SourceLine: row,
		})
	}

	if len(result.Tracks) == 0 {
		return nil, true, fmt.Errorf("%w: header recognized but every row lacked a title", shared.ErrEmptyPlaylist)
	}

	return result, true, nil
}

// parseLines reads one track per line, splitting "Artist - Title" on the
// first hyphen surrounded by whitespace. Lines without the separator
// become title-only entries.
func parseLines(lines []numberedLine) (*ParseResult, error) {
	result := &ParseResult{}
	for _, line := range lines {
		clean := strings.TrimSpace(line.text)
		track := ImportedTrack{SourceLine: line.num}

		if artist, title, found := strings.Cut(clean, " - "); found {
			track.Artist = strings.TrimSpace(artist)
			track.Title = strings.TrimSpace(title)
		} else {
			track.Title = clean
		}

		if track.Title == "" {
			result.SkippedRows++
			continue
		}
		result.Tracks = append(result.Tracks, track)
	}

	if len(result.Tracks) == 0 {
		return nil, fmt.Errorf("%w: no line matched a known pattern", shared.ErrUnsupportedFormat)
	}

	return result, nil
}

// normalizeHeader folds a header cell for column-name comparison.
func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(name))
}

func containsName(names []string, candidate string) bool {
	for _, n := range names {
		if n == candidate {
			return true
		}
	}
	return false
}
