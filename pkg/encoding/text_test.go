package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-qr/pkg/encoding"
)

func TestDecoder_UTF8ConFallback(t *testing.T) {
	d, err := encoding.NewDecoder("utf-8")
	require.NoError(t, err)

	assert.Equal(t, "Descripción", d.Line([]byte("Descripción\r\n")))
	// 0xF3 = ó en Windows-1252, inválido como UTF-8
	assert.Equal(t, "Descripción", d.Line([]byte("Descripci\xf3n")))
	assert.Equal(t, "", d.Line(nil))
}

func TestDecoder_Windows1252(t *testing.T) {
	d, err := encoding.NewDecoder("WINDOWS-1252")
	require.NoError(t, err)
	assert.Equal(t, "año", d.Line([]byte("a\xf1o")))
}

func TestNewDecoder_Desconocida(t *testing.T) {
	_, err := encoding.NewDecoder("ebcdic")
	assert.Error(t, err)
}
