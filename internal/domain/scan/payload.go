package scan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
)

// Claves del payload QR.
const (
	KeySerial      = "NS"
	KeyProduct     = "PRD"
	KeyDescription = "DSC"
	KeyLot         = "LOT"
	KeyCreated     = "FEC"
	KeyExpires     = "VTO"
)

var requiredKeys = []string{KeySerial, KeyProduct, KeyDescription, KeyLot, KeyCreated, KeyExpires}

// Parse interpreta "NS=000007|PRD=42|DSC=...|LOT=...|FEC=...|VTO=...".
// El orden de las claves no importa y las claves desconocidas se ignoran. Los valores admiten
// solo los escapes %7C, %3D y %25; cualquier otra secuencia % se conserva literal.
func Parse(raw string) (entity.ScanRecord, error) {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "|") || !strings.Contains(s, "=") {
		return entity.ScanRecord{}, domain.Errorf(domain.KindUnrecognizedFormat, "QR inválido: formato no reconocido")
	}
	if !utf8.ValidString(s) {
		return entity.ScanRecord{}, domain.Errorf(domain.KindInvalidPayload, "QR inválido: texto no UTF-8")
	}

	fields := make(map[string]string, len(requiredKeys))
	for _, part := range strings.Split(s, "|") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(k)] = unescape(strings.TrimSpace(v))
	}

	var missing []string
	for _, k := range requiredKeys {
		if fields[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return entity.ScanRecord{}, domain.Errorf(domain.KindInvalidPayload, "QR inválido, faltan campos: %s", strings.Join(missing, ", "))
	}

	serial, err := strconv.ParseInt(fields[KeySerial], 10, 64)
	if err != nil || serial < 0 {
		return entity.ScanRecord{}, domain.Errorf(domain.KindInvalidPayload, "QR inválido: NS=%q no es un número de serie", fields[KeySerial])
	}
	code := NormalizeID(fields[KeyProduct])
	productID, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return entity.ScanRecord{}, domain.Errorf(domain.KindInvalidPayload, "QR inválido: PRD=%q no es un id de producto", fields[KeyProduct])
	}

	return entity.ScanRecord{
		Serial:      serial,
		ProductID:   productID,
		ProductCode: code,
		Description: fields[KeyDescription],
		Lot:         fields[KeyLot],
		CreatedOn:   NormalizeDate(fields[KeyCreated]),
		ExpiresOn:   NormalizeDate(fields[KeyExpires]),
		Raw:         s,
	}, nil
}

// Encode arma el payload QR de una etiqueta, escapando los separadores dentro de los valores.
func Encode(r entity.ScanRecord) string {
	return fmt.Sprintf("%s=%06d|%s=%d|%s=%s|%s=%s|%s=%s|%s=%s",
		KeySerial, r.Serial,
		KeyProduct, r.ProductID,
		KeyDescription, escape(r.Description),
		KeyLot, escape(r.Lot),
		KeyCreated, escape(r.CreatedOn),
		KeyExpires, escape(r.ExpiresOn),
	)
}

var escaper = strings.NewReplacer("%", "%25", "|", "%7C", "=", "%3D")

func escape(v string) string { return escaper.Replace(v) }

var unescaper = strings.NewReplacer("%7C", "|", "%7c", "|", "%3D", "=", "%3d", "=", "%25", "%")

func unescape(v string) string {
	if !strings.Contains(v, "%") {
		return v
	}
	return unescaper.Replace(v)
}
