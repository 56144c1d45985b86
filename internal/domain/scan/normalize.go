// Package scan interpreta el contenido de los QR de pallets. Funciones puras, sin I/O.
package scan

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	shortDateLayout = "2/1/06"
	isoDateLayout   = "2006-01-02"
)

// NormalizeID canoniza un código de producto. Tolera artefactos de planilla como "123.0".
// Vacío o "nan" devuelven "". Nunca falla.
func NormalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if f != math.Trunc(f) {
		return s
	}
	return strconv.FormatFloat(f, 'f', 0, 64)
}

// NormalizeDate convierte dd/mm/yy a ISO-8601. Si no tiene "/" o no parsea, devuelve la entrada
// tal cual: una fecha mal formada no invalida el escaneo.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "/") {
		return s
	}
	d, err := time.Parse(shortDateLayout, s)
	if err != nil {
		return s
	}
	return d.Format(isoDateLayout)
}
