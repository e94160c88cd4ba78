// Package formats reads and writes question banks in spreadsheet and JSON
// files, so admins can bulk-load questions and students can practise offline.
package formats

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

// Adapter converts between one file format and questions.
type Adapter interface {
	// Import never fails on a bad row; bad rows are reported in the result.
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
	Export(ctx context.Context, w io.Writer, qs []model.Question) error
}

// ImportResult lists the usable questions and what was rejected.
type ImportResult struct {
	TotalProcessed int
	Questions      []model.Question
	Skipped        int
	Errors         []string
}

func (r *ImportResult) reject(row int, err error) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("row %d: %v", row, err))
}

// Registry of adapters by file extension (".csv", ".xlsx", ".json").
var registry = map[string]Adapter{}

// Register binds an adapter to an extension. Called from init().
func Register(ext string, a Adapter) { registry[strings.ToLower(ext)] = a }

// Lookup returns the adapter registered for ext.
func Lookup(ext string) (Adapter, bool) { a, ok := registry[strings.ToLower(ext)]; return a, ok }

// Extensions lists the registered extensions.
func Extensions() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func adapterFor(path string) (Adapter, error) {
	ext := filepath.Ext(path)
	a, ok := Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("unsupported question file %q (want one of %s)", path, strings.Join(Extensions(), ", "))
	}
	return a, nil
}

// ImportFile picks the adapter from the file extension.
func ImportFile(path string) (*ImportResult, error) {
	a, err := adapterFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return a.Import(context.Background(), f)
}

// ExportFile writes qs to path in the format its extension names.
func ExportFile(path string, qs []model.Question) error {
	a, err := adapterFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.Export(context.Background(), f, qs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
