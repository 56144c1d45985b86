package encoding

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Codificaciones de entrada aceptadas por la estación.
const (
	UTF8        = "utf-8"
	Windows1252 = "windows-1252"
)

// Decoder convierte cada línea leída del lector de códigos a UTF-8.
type Decoder struct {
	forceLegacy bool
}

// NewDecoder devuelve el decoder para la codificación configurada.
// Con utf-8 las líneas inválidas se reinterpretan como Windows-1252 (lectores en modo teclado latino).
func NewDecoder(name string) (*Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", UTF8, "utf8":
		return &Decoder{}, nil
	case Windows1252, "win1252", "cp1252":
		return &Decoder{forceLegacy: true}, nil
	default:
		return nil, fmt.Errorf("encoding: codificación no soportada %q", name)
	}
}

// Line decodifica una línea y recorta espacios y el fin de línea.
func (d *Decoder) Line(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if !d.forceLegacy && utf8.Valid(b) {
		return strings.TrimSpace(string(b))
	}
	return ToUTF8(b)
}

// ToUTF8 convierte bytes Windows-1252 a un string UTF-8.
func ToUTF8(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return strings.TrimSpace(string(b))
	}
	return strings.TrimSpace(string(decoded))
}
