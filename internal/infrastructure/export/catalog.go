package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// ReadCatalogXLSX lee la primera hoja: columna A id de producto, columna B descripción.
// La primera fila es encabezado; las filas vacías se ignoran.
func ReadCatalogXLSX(r io.Reader) ([]entity.Product, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Wrap(domain.KindInvalidInput, err, "xlsx ilegible")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Errorf(domain.KindInvalidInput, "xlsx sin hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: leer filas: %w", err)
	}

	var out []entity.Product
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		if len(row) < 2 {
			return nil, domain.Errorf(domain.KindInvalidInput, "fila %d: faltan columnas", i+1)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return nil, domain.Errorf(domain.KindInvalidInput, "fila %d: id de producto inválido %q", i+1, row[0])
		}
		out = append(out, entity.Product{ID: id, Description: strings.TrimSpace(row[1])})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
