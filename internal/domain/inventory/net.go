// Package inventory contiene la aritmética del ledger por rangos (servicios de dominio puros).
package inventory

import (
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
)

// Net calcula ingresos - salidas. No recorta a cero: un neto negativo indica corrupción del
// ledger y debe llegar al caller.
func Net(productID int64, lot, description string, in, out repository.Totals) entity.NetStock {
	return entity.NetStock{
		ProductID:   productID,
		Lot:         lot,
		Description: description,
		Pallets:     in.Pallets - out.Pallets,
		Packs:       in.Packs - out.Packs,
	}
}

// RangeTotals suma el aporte de una lista de rangos con la misma fórmula que el ledger.
func RangeTotals(ranges []entity.InboundRange) (pallets, packs int64) {
	for _, r := range ranges {
		pallets += r.Pallets()
		packs += int64(r.TrailingPacks)
	}
	return pallets, packs
}

// ForDisplay recorta a cero para superficies que solo muestran stock disponible.
func ForDisplay(n entity.NetStock) entity.NetStock {
	if n.Pallets < 0 {
		n.Pallets = 0
	}
	if n.Packs < 0 {
		n.Packs = 0
	}
	return n
}

// MergeTotals combina totales agrupados de ingreso y salida por producto+lote.
// Las claves solo presentes en salidas también se devuelven (neto negativo).
func MergeTotals(in, out []repository.Totals) map[ScopeKey]entity.NetStock {
	res := make(map[ScopeKey]entity.NetStock, len(in))
	for _, t := range in {
		k := ScopeKey{ProductID: t.ProductID, Lot: t.Lot}
		n := res[k]
		n.ProductID, n.Lot = t.ProductID, t.Lot
		n.Pallets += t.Pallets
		n.Packs += t.Packs
		res[k] = n
	}
	for _, t := range out {
		k := ScopeKey{ProductID: t.ProductID, Lot: t.Lot}
		n := res[k]
		n.ProductID, n.Lot = t.ProductID, t.Lot
		n.Pallets -= t.Pallets
		n.Packs -= t.Packs
		res[k] = n
	}
	return res
}

// ScopeKey identifica producto+lote.
type ScopeKey struct {
	ProductID int64
	Lot       string
}
