package service

import (
	"context"
	"fmt"

	"voicechallan/internal/dto"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportSheet    = "Challans"
	exportFilename = "challans.xlsx"
)

var exportHeader = []interface{}{"Challan No", "Customer", "Date", "Total Items", "Total Price"}

// ExportXLSX writes every challan matching filter, ignoring pagination, to a
// single-sheet workbook.
func (s *challanService) ExportXLSX(ctx context.Context, filter dto.ChallanFilter) (*dto.File, error) {
	filter.Page, filter.Limit = 1, 0
	challans, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list challans: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("export: close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "E1", bold); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	for i := range challans {
		c := &challans[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		items, _ := c.TotalItems.Float64()
		price, _ := c.TotalPrice.Round(2).Float64()
		row := []interface{}{
			c.ChallanNo,
			c.CustomerName,
			c.CreatedAt.UTC().Format("2006-01-02 15:04"),
			items,
			price,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "B", 24)
	_ = f.SetColWidth(exportSheet, "C", "C", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return &dto.File{Filename: exportFilename, ContentType: ContentTypeXLSX, Data: buf.Bytes()}, nil
}
