package entity

// ScanRecord contenido estructurado de un QR (NS|PRD|DSC|LOT|FEC|VTO).
type ScanRecord struct {
	Serial      int64
	ProductID   int64
	ProductCode string // PRD normalizado: "42.0" -> "42"
	Description string
	Lot         string
	CreatedOn   string // ISO-8601 cuando venía como dd/mm/yy
	ExpiresOn   string
	Raw         string
}

// SameScope indica si ambos QR pertenecen al mismo producto+lote.
func (s ScanRecord) SameScope(o ScanRecord) bool {
	return s.ProductID == o.ProductID && s.Lot == o.Lot
}
