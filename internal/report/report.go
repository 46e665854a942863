// Package report exports tracker entities to an Excel workbook.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/twiced-technology-gmbh/tasktracker/internal/date"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// Sheet names.
const (
	SheetSchedule = "Schedule"
	SheetAll      = "All"
)

type column struct {
	header string
	width  float64
}

var columns = []column{
	{"ID", 6},
	{"Kind", 10},
	{"Name", 40},
	{"Status", 14},
	{"Start", 18},
	{"End", 18},
	{"Duration", 10},
	{"Epic", 8},
}

// Write writes a workbook with two sheets: scheduled entities in start
// order, and every entity.
func Write(w io.Writer, scheduled, all []task.Entity) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSchedule); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAll); err != nil {
		return fmt.Errorf("creating sheet %s: %w", SheetAll, err)
	}

	if err := writeSheet(f, SheetSchedule, scheduled); err != nil {
		return err
	}
	if err := writeSheet(f, SheetAll, all); err != nil {
		return err
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, entities []task.Entity) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("opening sheet %s: %w", name, err)
	}

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col.header
		if err := sw.SetColWidth(i+1, i+1, col.width); err != nil {
			return err
		}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, e := range entities {
		cell, err := excelize.CoordinatesToCellName(1, i+2) //nolint:mnd // row 1 is the header
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(e)); err != nil {
			return fmt.Errorf("writing %s row %d: %w", name, i+2, err)
		}
	}
	return sw.Flush()
}

func row(e task.Entity) []any {
	t := e.Base()
	var dur string
	if t.Duration != nil {
		dur = date.FormatDuration(*t.Duration)
	}
	var epic any
	if st, ok := e.(*task.SubTask); ok {
		epic = st.EpicID
	}
	return []any{
		t.ID,
		string(e.Kind()),
		t.Name,
		string(t.Status),
		date.Format(t.StartTime),
		date.Format(e.End()),
		dur,
		epic,
	}
}
