package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Zuo-Peng/transcript-cleaner/internal/parse"
)

const (
	sheetName  = "Dialogue"
	clientBlue = "0000FF"
)

var columnWidths = []struct {
	col   string
	width float64
}{
	{"A", 10},
	{"B", 12},
	{"C", 100},
	{"D", 6},
}

type sheetStyles struct {
	header      int
	quote       int
	client      int
	clientQuote int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	wrap := &excelize.Alignment{WrapText: true, Vertical: "top"}
	top := &excelize.Alignment{Vertical: "top"}

	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	if s.quote, err = f.NewStyle(&excelize.Style{Alignment: wrap}); err != nil {
		return s, err
	}
	if s.client, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: clientBlue},
		Alignment: top,
	}); err != nil {
		return s, err
	}
	if s.clientQuote, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: clientBlue},
		Alignment: wrap,
	}); err != nil {
		return s, err
	}
	return s, nil
}

// writeXLSX builds a single-sheet workbook. Client rows are blue across all
// four cells.
func writeXLSX(w io.Writer, turns []parse.Turn) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(parse.Columns))
	for i, c := range parse.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "D1", styles.header); err != nil {
		return err
	}

	for i, t := range turns {
		row := i + 2
		first, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []interface{}{t.Timestamp, t.Speaker, t.Quote, t.Tag}
		if err := f.SetSheetRow(sheetName, first, &values); err != nil {
			return err
		}
		if err := styleRow(f, row, t.Speaker == parse.RoleClient, styles); err != nil {
			return err
		}
	}

	for _, cw := range columnWidths {
		if err := f.SetColWidth(sheetName, cw.col, cw.col, cw.width); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}

func styleRow(f *excelize.File, row int, client bool, s sheetStyles) error {
	cell := func(col int) string {
		name, _ := excelize.CoordinatesToCellName(col, row)
		return name
	}
	quoteStyle := s.quote
	if client {
		quoteStyle = s.clientQuote
		if err := f.SetCellStyle(sheetName, cell(1), cell(2), s.client); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell(4), cell(4), s.client); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheetName, cell(3), cell(3), quoteStyle)
}
