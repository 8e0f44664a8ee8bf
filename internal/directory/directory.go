// Package directory loads the candidate roster from an Excel workbook.
package directory

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/interview-invite-agent/internal/models"
)

// Required column headers
const (
	ColumnName     = "Name"
	ColumnEmail    = "Email"
	ColumnPosition = "Position"
)

// RequiredColumns lists the headers every candidates workbook must carry
var RequiredColumns = []string{ColumnName, ColumnEmail, ColumnPosition}

var (
	// ErrNotFound indicates the workbook does not exist.
	ErrNotFound = errors.New("candidates file not found")

	// ErrSchema indicates the workbook lacks one or more required columns.
	ErrSchema = errors.New("candidates file must contain 'Name', 'Email', and 'Position' columns")

	// ErrLoad indicates any other failure while reading the workbook.
	ErrLoad = errors.New("failed to load candidates")
)

// Directory is an immutable snapshot of candidate records keyed by name.
// It is safe for concurrent reads.
type Directory struct {
	names     []string
	emails    map[string]string
	positions map[string]string
}

// New builds a directory from records. When names repeat the first record wins.
func New(records ...models.CandidateRecord) *Directory {
	d := &Directory{
		emails:    make(map[string]string, len(records)),
		positions: make(map[string]string, len(records)),
	}
	for _, r := range records {
		d.add(r)
	}
	return d
}

func (d *Directory) add(r models.CandidateRecord) bool {
	if _, exists := d.emails[r.Name]; exists {
		return false
	}
	d.names = append(d.names, r.Name)
	d.emails[r.Name] = r.Email
	d.positions[r.Name] = r.Position
	return true
}

// Load reads the first sheet of the workbook at path. Row 1 is the header row.
func Load(path string, log *slog.Logger) (*Directory, error) {
	if log == nil {
		log = slog.Default()
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrLoad)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %s: %v", ErrLoad, sheets[0], err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrSchema, strings.Join(RequiredColumns, ", "))
	}

	index, missing := locateColumns(rows[0])
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrSchema, strings.Join(missing, ", "))
	}

	d := New()
	for i, row := range rows[1:] {
		record := models.CandidateRecord{
			Name:     cell(row, index[ColumnName]),
			Email:    cell(row, index[ColumnEmail]),
			Position: cell(row, index[ColumnPosition]),
		}
		if record.Name == "" {
			continue
		}
		if missing := record.Missing(); len(missing) > 0 {
			log.Warn("candidate row has blank cells and cannot be invited until it is fixed",
				slog.String("candidate", record.Name),
				slog.Int("row", i+2),
				slog.String("blank", strings.Join(missing, ", ")))
		}
		if !d.add(record) {
			log.Warn("duplicate candidate name, keeping first occurrence",
				slog.String("candidate", record.Name),
				slog.Int("row", i+2))
		}
	}

	log.Info("loaded candidates", slog.String("file", path), slog.Int("count", d.Len()))
	return d, nil
}

// locateColumns maps each required header to its column index
func locateColumns(header []string) (map[string]int, []string) {
	index := make(map[string]int, len(RequiredColumns))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return index, missing
}

// cell returns the trimmed value at i, or "" for short rows
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// Names returns candidate names in file order
func (d *Directory) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Emails returns a copy of the name to email lookup
func (d *Directory) Emails() map[string]string {
	return copyMap(d.emails)
}

// Positions returns a copy of the name to position lookup
func (d *Directory) Positions() map[string]string {
	return copyMap(d.positions)
}

// Lookup returns the record for name
func (d *Directory) Lookup(name string) (models.CandidateRecord, bool) {
	email, ok := d.emails[name]
	if !ok {
		return models.CandidateRecord{}, false
	}
	return models.CandidateRecord{Name: name, Email: email, Position: d.positions[name]}, true
}

// Records returns all records in file order
func (d *Directory) Records() []models.CandidateRecord {
	out := make([]models.CandidateRecord, 0, len(d.names))
	for _, name := range d.names {
		r, _ := d.Lookup(name)
		out = append(out, r)
	}
	return out
}

// Len returns the number of candidates
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Empty reports whether there is nothing to display
func (d *Directory) Empty() bool {
	return d.Len() == 0
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
