package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ikkim/tableqr-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "QR Codes"

var exportHeaders = []string{
	"ID", "Type", "Table", "Target Kind", "Target", "Design", "Size", "Error Level", "Scans", "Created At",
}

var exportColumnWidths = []float64{38, 10, 8, 12, 45, 10, 8, 11, 8, 20}

// Export 매장의 QR 코드 목록을 xlsx로 내보내기 (카운터 변화 없음)
func (s *qrCodeService) Export(restaurantID uint) ([]byte, error) {
	qrs, err := s.ListByRestaurant(restaurantID)
	if err != nil {
		return nil, err
	}
	return buildQRCodeWorkbook(qrs, s.targetURL)
}

func buildQRCodeWorkbook(qrs []model.QRCode, target func(*model.QRCode) string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range exportHeaders {
		if err := setExportCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheetName, name, name, exportColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i := range qrs {
		qr := &qrs[i]
		row := i + 2

		var table interface{}
		if qr.TableNumber != nil {
			table = *qr.TableNumber
		}
		values := []interface{}{
			qr.ID,
			string(qr.CodeType),
			table,
			string(qr.TargetKind),
			target(qr),
			qr.Style.Design,
			qr.Style.Size,
			qr.Style.ErrorCorrectionLevel,
			qr.ScanCount,
			qr.CreatedAt.UTC().Format(time.RFC3339),
		}
		for col, value := range values {
			if value == nil {
				continue
			}
			if err := setExportCell(f, col+1, row, value); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setExportCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
