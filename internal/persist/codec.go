// Package persist reads and writes the tracker's state: entities as CSV rows
// and the view history as a YAML sidecar.
package persist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// Header is the first row of every data file.
var Header = []string{"id", "type", "name", "status", "description", "epic", "start", "duration"}

// legacyColumns is the width of rows written before schedules were stored.
const legacyColumns = 6

// Column positions.
const (
	colID = iota
	colKind
	colName
	colStatus
	colDescription
	colEpic
	colStart
	colDuration
)

// Encode writes the header and one row per entity, in the order given.
func Encode(w io.Writer, entities []task.Entity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entities {
		if err := cw.Write(encodeRow(e)); err != nil {
			return fmt.Errorf("writing %s #%d: %w", e.Kind(), e.Base().ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeRow(e task.Entity) []string {
	t := e.Base()
	row := make([]string, len(Header))
	row[colID] = strconv.Itoa(t.ID)
	row[colKind] = string(e.Kind())
	row[colName] = t.Name
	row[colStatus] = string(t.Status)
	row[colDescription] = t.Description

	switch v := e.(type) {
	case *task.Task:
	case *task.Epic:
		// Epic schedules are derived; they are rebuilt on load.
		return row
	case *task.SubTask:
		row[colEpic] = strconv.Itoa(v.EpicID)
	}

	if t.StartTime != nil {
		row[colStart] = t.StartTime.Format(time.RFC3339Nano)
	}
	if t.Duration != nil {
		row[colDuration] = t.Duration.String()
	}
	return row
}

// Decode reads entities written by Encode. Rows with the six columns used
// before schedules were stored are accepted. Any malformed row fails the
// whole decode with a CORRUPT_DATA error.
func Decode(r io.Reader) ([]task.Entity, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, clierr.Wrap(clierr.CorruptData, err, "reading header")
	}
	if !validHeader(head) {
		return nil, clierr.Newf(clierr.CorruptData, "unexpected header %q", strings.Join(head, ",")).
			WithDetails(map[string]any{"expected": strings.Join(Header, ",")})
	}

	var out []task.Entity
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, clierr.Wrap(clierr.CorruptData, err, "reading row")
		}
		line, _ := cr.FieldPos(0)
		e, err := decodeRow(row)
		if err != nil {
			return nil, clierr.Wrap(clierr.CorruptData, err, "line %d", line).
				WithDetails(map[string]any{"line": line})
		}
		out = append(out, e)
	}
	return out, nil
}

func validHeader(head []string) bool {
	switch len(head) {
	case len(Header), legacyColumns:
		return slices.Equal(head, Header[:len(head)])
	}
	return false
}

func decodeRow(row []string) (task.Entity, error) {
	if len(row) != len(Header) && len(row) != legacyColumns {
		return nil, fmt.Errorf("expected %d or %d fields, got %d", len(Header), legacyColumns, len(row))
	}

	id, err := strconv.Atoi(row[colID])
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid id %q", row[colID])
	}
	kind := task.Kind(row[colKind])
	if !slices.Contains(task.Kinds(), kind) {
		return nil, fmt.Errorf("unknown type %q", row[colKind])
	}
	status := task.Status(row[colStatus])
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", row[colStatus])
	}

	rec := task.Record{
		ID:          id,
		Kind:        kind,
		Name:        row[colName],
		Description: row[colDescription],
		Status:      status,
	}
	if kind == task.KindSubTask {
		rec.EpicID, err = strconv.Atoi(row[colEpic])
		if err != nil {
			return nil, fmt.Errorf("invalid epic %q", row[colEpic])
		}
	}
	if len(row) > legacyColumns && kind != task.KindEpic {
		if s := row[colStart]; s != "" {
			start, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("invalid start %q", s)
			}
			rec.StartTime = &start
		}
		rec.Duration = row[colDuration]
	}

	return rec.Entity(kind)
}
