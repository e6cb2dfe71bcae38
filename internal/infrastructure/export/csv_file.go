// Package export owns the single delimited file that storefront writes after
// each checkout and stock-service reads back during reconciliation.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/domain"
)

var header = []string{"id", "name", "quantity"}

// FileSink overwrites one CSV file per export.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Location() string { return s.path }

// Write stages the records in a temp file next to the target and renames it
// into place, so a reader sees either the previous export or this one.
func (s *FileSink) Write(ctx context.Context, records []domain.ExportRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteRecords(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	return nil
}

func WriteRecords(w io.Writer, records []domain.ExportRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{strconv.FormatInt(r.ID, 10), r.Name, strconv.Itoa(r.Quantity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileSource reads the export file back for reconciliation.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Location() string { return s.path }

func (s *FileSource) Read(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSourceUnavailable
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	return ParseRecords(f)
}

// Archive renames the file to <path>.processed-<UTC timestamp>.
func (s *FileSource) Archive(ctx context.Context, at time.Time) (string, error) {
	dst := s.path + ".processed-" + at.UTC().Format("20060102T150405.000000000Z")
	if err := os.Rename(s.path, dst); err != nil {
		return "", fmt.Errorf("archive %s: %w", s.path, err)
	}
	return dst, nil
}

var columnAliases = map[string]string{
	"id":       "id",
	"name":     "name",
	"nombre":   "name",
	"quantity": "quantity",
	"cantidad": "quantity",
}

// ParseRecords reads a CSV with a header row. Header names are matched
// case-insensitively against the known aliases; unknown columns are ignored.
// A file with neither a name nor a quantity column is ErrMalformedSource.
// A data row that breaks CSV quoting comes back as a RawRecord with
// ParseError set and reading continues with the next line.
func ParseRecords(r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.RawRecord{}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSource, err)
	}

	cols := map[string]int{}
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := columnAliases[h]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	_, hasName := cols["name"]
	_, hasQty := cols["quantity"]
	if !hasName && !hasQty {
		return nil, fmt.Errorf("%w: no name or quantity column in header %q", domain.ErrMalformedSource, head)
	}

	field := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := []domain.RawRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			out = append(out, domain.RawRecord{Line: pe.StartLine, ParseError: pe.Err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSource, err)
		}
		line, _ := cr.FieldPos(0)
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		out = append(out, domain.RawRecord{
			Line:     line,
			ID:       field(row, "id"),
			Name:     field(row, "name"),
			Quantity: field(row, "quantity"),
		})
	}
	return out, nil
}
