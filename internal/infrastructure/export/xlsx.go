// Package export genera la planilla de stock neto descargable.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

const sheet = "Stock"

var headers = []string{"ID Producto", "Descripción", "Lote", "Pallets", "Packs"}

// WriteStockXLSX escribe una fila por producto+lote.
func WriteStockXLSX(w io.Writer, rows []entity.NetStock) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("xlsx: header: %w", err)
		}
	}
	for i, r := range rows {
		line := i + 2
		values := []any{r.ProductID, r.Description, r.Lot, r.Pallets, r.Packs}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, line)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("xlsx: fila %d: %w", line, err)
			}
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("xlsx: panes: %w", err)
	}
	return f.Write(w)
}
