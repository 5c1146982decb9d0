package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/erosionwatch/internal/config"
	"github.com/KaramelBytes/erosionwatch/internal/dataset"
)

// inputFlags are the table-reading flags shared by every command that loads a survey file.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	encoding   string
	idColumn   string
	dateLayout string
	sheetName  string
	sheetIndex int
}

func (in *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&in.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from config, else by extension)")
	fs.StringVar(&in.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'|'auto' (default '.')")
	fs.StringVar(&in.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (default none)")
	fs.StringVar(&in.encoding, "encoding", "", "CSV text encoding: latin1|utf-8 (default from config)")
	fs.StringVar(&in.idColumn, "id-column", "", "location identifier column (default from config)")
	fs.StringVar(&in.dateLayout, "date-layout", "", "Go time layout of date headers (default from config)")
	fs.StringVar(&in.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fs.IntVar(&in.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// options merges the flags over the loaded configuration.
func (in *inputFlags) options(c *cfgpkg.Global) (dataset.LoadOptions, dataset.Options, error) {
	lo := dataset.DefaultLoadOptions()
	no := dataset.DefaultOptions()

	lo.Encoding = pick(in.encoding, c.Encoding)
	lo.SheetName = in.sheetName
	if in.sheetIndex > 0 {
		lo.SheetIndex = in.sheetIndex
	}
	d, err := cfgpkg.DelimiterRune(pick(in.delimiter, c.Delimiter))
	if err != nil {
		return lo, no, fmt.Errorf("--delimiter: %w", err)
	}
	lo.Delimiter = d

	no.IDColumn = pick(in.idColumn, c.IDColumn)
	no.DateLayout = pick(in.dateLayout, c.DateLayout)
	decimal := pick(in.decimal, c.DecimalSeparator)
	if no.Numeric.DecimalSeparator, err = cfgpkg.DecimalRune(decimal); err != nil {
		return lo, no, fmt.Errorf("--decimal: %w", err)
	}
	no.Numeric.Auto = cfgpkg.IsAutoDecimal(decimal)
	if no.Numeric.ThousandsSeparator, err = cfgpkg.ThousandsRune(pick(in.thousands, c.ThousandsSeparator)); err != nil {
		return lo, no, fmt.Errorf("--thousands: %w", err)
	}
	return lo, no, nil
}

// load reads and normalizes one survey file.
func (in *inputFlags) load(path string) (*dataset.Dataset, error) {
	lo, no, err := in.options(settings())
	if err != nil {
		return nil, err
	}
	raw, err := dataset.Load(path, lo)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Normalize(raw, no)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("file", path).
		Int("locations", ds.Len()).
		Int("dates", len(ds.Dates)).
		Int("dropped", ds.Dropped).
		Msg("dataset loaded")
	return ds, nil
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
