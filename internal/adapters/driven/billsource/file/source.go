package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/billtopics/internal/core/domain"
	"github.com/custodia-labs/billtopics/internal/core/ports/driven"
	"github.com/custodia-labs/billtopics/internal/logger"
)

// Format is an input file encoding.
type Format string

// Supported input formats.
const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// SponsorSeparator separates sponsor ids inside a CSV cell.
const SponsorSeparator = ";"

// maxLineSize bounds a single JSON Lines record; bill texts can be long.
const maxLineSize = 64 << 20

// Ensure Source implements the interface.
var _ driven.BillSource = (*Source)(nil)

// Source reads bill records from a local file.
type Source struct {
	path   string
	format Format
}

// New creates a source for path, choosing the format from its extension.
func New(path string) (*Source, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return &Source{path: path, format: format}, nil
}

// FormatFor maps a file extension onto a Format.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: input file %q (want .json, .jsonl or .csv)", domain.ErrUnsupportedType, path)
	}
}

// Name returns the file path.
func (s *Source) Name() string {
	return s.path
}

// Path returns the file path.
func (s *Source) Path() string {
	return s.path
}

// Load reads every record in file order.
func (s *Source) Load(ctx context.Context) ([]domain.BillRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	records, err := Decode(ctx, f, s.format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	logger.Debug("loaded %d records from %s", len(records), s.path)
	return records, nil
}

// Decode reads records in the given format.
func Decode(ctx context.Context, r io.Reader, format Format) ([]domain.BillRecord, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatJSONL:
		return decodeJSONL(ctx, r)
	case FormatCSV:
		return decodeCSV(ctx, r)
	default:
		return nil, fmt.Errorf("%w: format %q", domain.ErrUnsupportedType, format)
	}
}

// jsonRecord converts one decoded element. Fields of the wrong type become
// missing values with a warning; an element that is not an object yields an
// empty record, which validation later reports as skipped.
func jsonRecord(index int, raw json.RawMessage) domain.BillRecord {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		logger.Warn("record %d: ignoring element that is not a JSON object", index)
		return domain.BillRecord{}
	}

	// text reads a string field; a number is accepted only where numeric is true.
	text := func(name string, numeric bool) *string {
		v, ok := fields[name]
		if !ok || isNull(v) {
			return nil
		}
		s, isNumber, ok := scalar(v)
		if !ok || (isNumber && !numeric) {
			logger.Warn("record %d: ignoring %s of unexpected type: %s", index, name, truncate(v))
			return nil
		}
		return &s
	}

	rec := domain.BillRecord{
		ID:      text(colID, true),
		Title:   text(colTitle, false),
		RawText: text(colRawText, false),
		Party:   text(colParty, false),
		State:   text(colState, false),
	}
	if v := text(colEnactedDate, false); v != nil {
		rec.EnactedDate = parseDate(index, *v)
	}
	if v := text(colVoteYea, true); v != nil {
		rec.VoteYea = parseCount(index, colVoteYea, *v)
	}
	if v := text(colVoteNay, true); v != nil {
		rec.VoteNay = parseCount(index, colVoteNay, *v)
	}
	if v, ok := fields[colSponsors]; ok && !isNull(v) {
		rec.SponsorIDs = jsonSponsors(index, v)
	}
	return rec
}

// jsonSponsors accepts an array of string or integer ids.
func jsonSponsors(index int, raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("record %d: ignoring sponsors that are not an array", index)
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		s, _, ok := scalar(item)
		if !ok {
			logger.Warn("record %d: ignoring sponsor of unexpected type: %s", index, truncate(item))
			continue
		}
		ids = append(ids, s)
	}
	return ids
}

// scalar returns the text of a JSON string or number.
func scalar(raw json.RawMessage) (s string, isNumber, ok bool) {
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, false, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true, true
	}
	return "", false, false
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func truncate(raw json.RawMessage) string {
	const limit = 40
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}

func decodeJSON(r io.Reader) ([]domain.BillRecord, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decoding json array: %w", domain.ErrInvalidInput, err)
	}
	records := make([]domain.BillRecord, len(raw))
	for i, element := range raw {
		records[i] = jsonRecord(i, element)
	}
	return records, nil
}

// decodeJSONL reads one record per line. A line that is not valid JSON
// becomes an empty record so only that record is skipped.
func decodeJSONL(ctx context.Context, r io.Reader) ([]domain.BillRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []domain.BillRecord
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !json.Valid(text) {
			logger.Warn("line %d: ignoring invalid JSON", line)
			records = append(records, domain.BillRecord{})
			continue
		}
		records = append(records, jsonRecord(len(records), json.RawMessage(text)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning json lines: %w", err)
	}
	return records, nil
}

// Field names shared by the CSV header and JSON objects. Only bill_id and
// raw_text are required in a CSV header.
const (
	colID          = "bill_id"
	colTitle       = "title"
	colRawText     = "raw_text"
	colParty       = "sponsor_party"
	colState       = "state"
	colEnactedDate = "enacted_date"
	colVoteYea     = "vote_yea"
	colVoteNay     = "vote_nay"
	colSponsors    = "sponsors"
)

func decodeCSV(ctx context.Context, r io.Reader) ([]domain.BillRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading csv header: %w", domain.ErrInvalidInput, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{colID, colRawText} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: csv header lacks %q", domain.ErrInvalidInput, required)
		}
	}

	var records []domain.BillRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, csvRecord(len(records), cols, row))
	}
	return records, nil
}

func csvRecord(index int, cols map[string]int, row []string) domain.BillRecord {
	// cell returns nil when the column is absent from the header or the row.
	cell := func(name string) *string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return nil
		}
		v := row[i]
		return &v
	}
	// optional treats an empty cell as missing.
	optional := func(name string) *string {
		v := cell(name)
		if v == nil || strings.TrimSpace(*v) == "" {
			return nil
		}
		return v
	}

	rec := domain.BillRecord{
		ID:      cell(colID),
		Title:   cell(colTitle),
		RawText: cell(colRawText),
		Party:   cell(colParty),
		State:   cell(colState),
	}
	if v := optional(colEnactedDate); v != nil {
		rec.EnactedDate = parseDate(index, *v)
	}
	if v := optional(colVoteYea); v != nil {
		rec.VoteYea = parseCount(index, colVoteYea, *v)
	}
	if v := optional(colVoteNay); v != nil {
		rec.VoteNay = parseCount(index, colVoteNay, *v)
	}
	if v := optional(colSponsors); v != nil {
		rec.SponsorIDs = strings.Split(*v, SponsorSeparator)
	}
	return rec
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and keeps the date in the
// timestamp's own offset. Unparseable dates are treated as missing.
func parseDate(index int, s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = domain.CalendarDate(t)
			return &t
		}
	}
	logger.Warn("record %d: ignoring unparseable enacted_date %q", index, s)
	return nil
}

func parseCount(index int, column, s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		logger.Warn("record %d: ignoring non-integer %s %q", index, column, s)
		return nil
	}
	return &n
}
