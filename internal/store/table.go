package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// table is a parsed delimited file. Rows are keyed by header name; fields
// missing from a short row read as empty strings.
type table struct {
	header []string
	rows   []row
}

type row struct {
	line   int
	values map[string]string
}

// get returns the value of the first present column among names.
func (r row) get(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := r.values[n]; ok {
			return v, true
		}
	}
	return "", false
}

// rowError describes a record the CSV reader could not parse.
type rowError struct {
	line int
	err  error
}

// decodeText strips a byte order mark and decodes UTF-8, falling back to
// Windows-1252 for files saved by older spreadsheet tools.
func decodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// sniffDelimiter picks ';' when the first line contains one, else ','.
func sniffDelimiter(text string) rune {
	first := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		first = text[:i]
	}
	if strings.ContainsRune(first, ';') {
		return ';'
	}
	return ','
}

// readTable reads path. A zero delim sniffs the delimiter from the first
// line. Unparsable records are returned separately so callers can log and
// skip them.
func readTable(path string, delim rune) (table, []rowError, error) {
	// #nosec G304 -- paths come from the store configuration
	raw, err := os.ReadFile(path)
	if err != nil {
		return table{}, nil, err
	}
	text, err := decodeText(raw)
	if err != nil {
		return table{}, nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if delim == 0 {
		delim = sniffDelimiter(text)
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var t table
	var skipped []rowError
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return t, nil, nil
	}
	if err != nil {
		return table{}, nil, fmt.Errorf("read header of %s: %w", filepath.Base(path), err)
	}
	t.header = header
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped = append(skipped, rowError{line: pe.Line, err: err})
				continue
			}
			return table{}, nil, err
		}
		line, _ := r.FieldPos(0)
		if blankRecord(record) {
			continue
		}
		values := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				values[col] = record[i]
			} else {
				values[col] = ""
			}
		}
		t.rows = append(t.rows, row{line: line, values: values})
	}
	return t, skipped, nil
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// encodeTable renders header and records with delim and CRLF line endings,
// optionally prefixed with a UTF-8 byte order mark.
func encodeTable(header []string, records [][]string, delim rune, bom bool) ([]byte, error) {
	var buf bytes.Buffer
	var dst io.Writer = &buf
	var enc *transform.Writer
	if bom {
		enc = transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())
		dst = enc
	}
	w := csv.NewWriter(dst)
	w.Comma = delim
	w.UseCRLF = true
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// writeFile replaces path with payload via a temporary file in the same
// directory, then hands the bytes to the archiver.
func (s *Store) writeFile(ctx context.Context, path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	if s.archive != nil {
		if err := s.archive.Snapshot(ctx, filepath.Base(path), payload); err != nil {
			s.logger.Warn("snapshot failed", "file", filepath.Base(path), "error", err)
		}
	}
	return nil
}
