package scan_test

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
)

const validPayload = "NS=000007|PRD=42.0|DSC=Widget|LOT=010124|FEC=01/01/24|VTO=01/07/24"

func TestParse_PayloadCompleto(t *testing.T) {
	rec, err := scan.Parse(validPayload)
	require.NoError(t, err)

	assert.Equal(t, int64(7), rec.Serial)
	assert.Equal(t, "42", rec.ProductCode)
	assert.Equal(t, int64(42), rec.ProductID)
	assert.Equal(t, "Widget", rec.Description)
	assert.Equal(t, "010124", rec.Lot)
	assert.Equal(t, "2024-01-01", rec.CreatedOn)
	assert.Equal(t, "2024-07-01", rec.ExpiresOn)
	assert.Equal(t, validPayload, rec.Raw)
}

func TestParse_OrdenIndistintoYClavesExtra(t *testing.T) {
	rec, err := scan.Parse(" VTO=2026-08-09|X=1|LOT=090226|DSC=Leche|PRD=12|NS=15|FEC=2026-02-09 \n")
	require.NoError(t, err)

	assert.Equal(t, int64(15), rec.Serial)
	assert.Equal(t, int64(12), rec.ProductID)
	assert.Equal(t, "2026-02-09", rec.CreatedOn, "fechas ISO pasan sin cambios")
}

func TestParse_FaltanCampos(t *testing.T) {
	_, err := scan.Parse("NS=1|PRD=2|DSC=|LOT=A")
	require.Error(t, err)

	assert.True(t, errors.Is(err, domain.ErrInvalidPayload))
	assert.Equal(t, domain.KindInvalidPayload, domain.KindOf(err))
	assert.Contains(t, err.Error(), "DSC")
	assert.Contains(t, err.Error(), "FEC")
	assert.Contains(t, err.Error(), "VTO")
	assert.NotContains(t, err.Error(), "NS,")
}

func TestParse_FormatoNoReconocido(t *testing.T) {
	for _, raw := range []string{"", "hola", "NS=1", "a|b"} {
		_, err := scan.Parse(raw)
		assert.True(t, errors.Is(err, domain.ErrUnrecognizedFormat), "entrada %q", raw)
	}
}

func TestParse_SerieOProductoNoNumerico(t *testing.T) {
	_, err := scan.Parse("NS=abc|PRD=1|DSC=x|LOT=A|FEC=a|VTO=b")
	assert.True(t, errors.Is(err, domain.ErrInvalidPayload))

	_, err = scan.Parse("NS=1|PRD=12.5|DSC=x|LOT=A|FEC=a|VTO=b")
	assert.True(t, errors.Is(err, domain.ErrInvalidPayload))
}

func TestParse_ValoresEscapados(t *testing.T) {
	rec, err := scan.Parse("NS=1|PRD=1|DSC=Caja 50%25 %7C grande %3D ok|LOT=A|FEC=x|VTO=y")
	require.NoError(t, err)
	assert.Equal(t, "Caja 50% | grande = ok", rec.Description)

	rec, err = scan.Parse("NS=1|PRD=1|DSC=Leche 3%|LOT=A|FEC=x|VTO=y")
	require.NoError(t, err)
	assert.Equal(t, "Leche 3%", rec.Description, "un escape inválido se conserva literal")

	rec, err = scan.Parse("NS=1|PRD=1|DSC=Caja%20x%7c%3d|LOT=A%2FB|FEC=x|VTO=y")
	require.NoError(t, err)
	assert.Equal(t, "Caja%20x|=", rec.Description, "solo se decodifican %7C, %3D y %25")
	assert.Equal(t, "A%2FB", rec.Lot)

	rec, err = scan.Parse("NS=1|PRD=1|DSC=50%257C|LOT=A|FEC=x|VTO=y")
	require.NoError(t, err)
	assert.Equal(t, "50%7C", rec.Description, "la decodificación es de una sola pasada")
}

func TestParse_EscapeNoProduceUTF8Invalido(t *testing.T) {
	rec, err := scan.Parse("NS=1|PRD=1|DSC=Caja%20x%FF|LOT=A|FEC=01/01/24|VTO=01/07/24")
	require.NoError(t, err)
	assert.Equal(t, "Caja%20x%FF", rec.Description)
	assert.True(t, utf8.ValidString(rec.Description))

	_, err = scan.Parse("NS=1|PRD=1|DSC=Caja \xff|LOT=A|FEC=x|VTO=y")
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidPayload, domain.KindOf(err))
}

func TestEncode_IdaYVuelta(t *testing.T) {
	in := entity.ScanRecord{
		Serial:      42,
		ProductID:   7,
		Description: "Yerba | 1kg = x",
		Lot:         "090226",
		CreatedOn:   "2026-02-09",
		ExpiresOn:   "2026-08-09",
	}
	raw := scan.Encode(in)
	assert.Contains(t, raw, "NS=000042|")

	out, err := scan.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, in.Description, out.Description)
	assert.Equal(t, in.Serial, out.Serial)
	assert.Equal(t, in.ProductID, out.ProductID)
	assert.Equal(t, in.Lot, out.Lot)
}
