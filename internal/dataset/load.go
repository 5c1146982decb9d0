package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// LoadOptions controls how a table is read from disk.
type LoadOptions struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Encoding of CSV input: "latin1" (default) or "utf-8".
	Encoding string
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
}

// DefaultLoadOptions matches the survey exports: latin1 comma-separated files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Encoding: "latin1", SheetIndex: 1}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a CSV/TSV or XLSX file into a Raw table, choosing the reader by extension.
func Load(path string, opt LoadOptions) (*Raw, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt.SheetName, opt.SheetIndex)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited text file into a Raw table.
func LoadCSV(path string, opt LoadOptions) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	raw, err := ReadCSV(f, opt)
	if err != nil {
		return nil, err
	}
	raw.Name = filepath.Base(path)
	return raw, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ReadCSV decodes delimited text from r. A UTF-8 byte order mark forces
// UTF-8 decoding regardless of opt.Encoding.
func ReadCSV(r io.Reader, opt LoadOptions) (*Raw, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	} else {
		switch strings.ToLower(strings.TrimSpace(opt.Encoding)) {
		case "", "latin1", "latin-1", "iso-8859-1":
			src = charmap.ISO8859_1.NewDecoder().Reader(br)
		case "utf-8", "utf8":
		default:
			return nil, fmt.Errorf("unsupported encoding: %s", opt.Encoding)
		}
	}
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = ','
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Raw{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	raw := &Raw{Header: header}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(raw.Rows)+1, err)
		}
		raw.Rows = append(raw.Rows, rec)
	}
	return raw, nil
}
