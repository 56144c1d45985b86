package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/infrastructure/export"
)

func catalogFile(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadCatalogXLSX(t *testing.T) {
	buf := catalogFile(t, [][]any{
		{"id_producto", "descripcion"},
		{42, " Widget "},
		{},
		{"7", "Yerba 1kg"},
	})

	got, err := export.ReadCatalogXLSX(buf)
	require.NoError(t, err)
	assert.Equal(t, []entity.Product{{ID: 42, Description: "Widget"}, {ID: 7, Description: "Yerba 1kg"}}, got)
}

func TestReadCatalogXLSX_IDInvalido(t *testing.T) {
	buf := catalogFile(t, [][]any{
		{"id_producto", "descripcion"},
		{"abc", "Widget"},
	})

	_, err := export.ReadCatalogXLSX(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "fila 2")
}

func TestReadCatalogXLSX_NoEsXLSX(t *testing.T) {
	_, err := export.ReadCatalogXLSX(strings.NewReader("id,descripcion\n1,x\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
