// Package export renders rooms and movement records as xlsx workbooks and
// uploads them to a blob store.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"frontdesk/internal/infra/blob/core"
	"frontdesk/pkg/domain"
)

// XLSXContentType is the MIME type of generated workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	RoomsSheet     = "Rooms"
	MovementsSheet = "Movements"
)

type column[T any] struct {
	header string
	width  float64
	value  func(T) any
}

var roomColumns = []column[domain.Room]{
	{"ID", 12, func(r domain.Room) any { return r.ID }},
	{"Name", 24, func(r domain.Room) any { return r.Name }},
	{"Status", 12, func(r domain.Room) any { return r.Status.Label() }},
	{"Price per night", 16, func(r domain.Room) any {
		if r.PricePerNight == nil {
			return nil
		}
		return *r.PricePerNight
	}},
	{"Guest", 24, func(r domain.Room) any {
		if r.Guest == nil {
			return nil
		}
		return r.Guest.Name
	}},
	{"Document", 16, func(r domain.Room) any {
		if r.Guest == nil {
			return nil
		}
		return r.Guest.Document
	}},
	{"Reservation", 18, func(r domain.Room) any {
		if r.Reservation == nil {
			return nil
		}
		return r.Reservation.Date + " " + r.Reservation.Time
	}},
	{"Check-in", 18, func(r domain.Room) any { return stamp(r.CheckIn) }},
	{"Check-out", 18, func(r domain.Room) any { return stamp(r.CheckOut) }},
}

var movementColumns = []column[domain.MovementRecord]{
	{"ID", 8, func(m domain.MovementRecord) any { return m.ID }},
	{"Date", 12, func(m domain.MovementRecord) any { return m.Date }},
	{"Time", 8, func(m domain.MovementRecord) any { return m.Time }},
	{"Room", 12, func(m domain.MovementRecord) any { return m.RoomID }},
	{"Room name", 20, func(m domain.MovementRecord) any { return m.RoomName }},
	{"Type", 16, func(m domain.MovementRecord) any { return string(m.Type) }},
	{"From", 12, func(m domain.MovementRecord) any {
		if m.PreviousStatus == nil {
			return nil
		}
		return m.PreviousStatus.Label()
	}},
	{"To", 12, func(m domain.MovementRecord) any { return m.NewStatus.Label() }},
	{"Guest", 24, func(m domain.MovementRecord) any {
		if m.Guest == nil {
			return nil
		}
		return m.Guest.Name
	}},
	{"Observations", 48, func(m domain.MovementRecord) any { return m.Observations }},
	{"Actor", 16, func(m domain.MovementRecord) any { return m.Actor }},
}

func stamp(s *domain.Stamp) any {
	if s == nil {
		return nil
	}
	return s.Date + " " + s.Time
}

// RoomsWorkbook renders rooms on a single sheet.
func RoomsWorkbook(rooms []domain.Room) ([]byte, error) {
	return writeWorkbook(RoomsSheet, roomColumns, rooms)
}

// MovementsWorkbook renders movement records on a single sheet.
func MovementsWorkbook(records []domain.MovementRecord) ([]byte, error) {
	return writeWorkbook(MovementsSheet, movementColumns, records)
}

func writeWorkbook[T any](sheet string, columns []column[T], rows []T) (out []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, col.header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, col.width); err != nil {
			return nil, fmt.Errorf("set width %s: %w", name, err)
		}
	}

	for r, row := range rows {
		for c, col := range columns {
			v := col.value(row)
			if v == nil || v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Upload stores data under key, replacing any previous export, and returns
// a download URL when the store can sign one.
func Upload(ctx context.Context, store core.Store, key string, data []byte) (core.Info, error) {
	info, err := store.Put(ctx, key, bytes.NewReader(data), core.PutOptions{
		ContentType: XLSXContentType,
		Overwrite:   true,
	})
	if err != nil {
		return core.Info{}, fmt.Errorf("upload %s: %w", key, err)
	}
	url, err := store.PresignURL(ctx, key, core.SignedURLOptions{})
	switch {
	case err == nil:
		info.URL = url
	case errors.Is(err, core.ErrUnsupported):
	default:
		return info, fmt.Errorf("sign %s: %w", key, err)
	}
	return info, nil
}
