package inventory

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/repository"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
)

const (
	maxLabelDescription = 90
	expiryMonths        = 6
	lotLayout           = "020106"
	isoDate             = "2006-01-02"
)

// ReserveSerialsUseCase reserva series consecutivas para imprimir etiquetas. La continuidad sale
// de la marca persistida por producto+lote, no de memoria del proceso.
type ReserveSerialsUseCase struct {
	tx   TxRunner
	opts options
}

// NewReserveSerialsUseCase construye el caso de uso.
func NewReserveSerialsUseCase(tx TxRunner, opts ...Option) *ReserveSerialsUseCase {
	return &ReserveSerialsUseCase{tx: tx, opts: buildOptions(opts)}
}

// ReserveInput Lot vacío usa el lote del día (ddmmyy).
type ReserveInput struct {
	ProductID int64
	Lot       string
	Count     int
}

// Reservation series reservadas y sus payloads QR.
type Reservation struct {
	ProductID   int64    `json:"product_id"`
	Description string   `json:"description"`
	Lot         string   `json:"lot"`
	First       int64    `json:"first"`
	Last        int64    `json:"last"`
	CreatedOn   string   `json:"created_on"`
	ExpiresOn   string   `json:"expires_on"`
	Payloads    []string `json:"payloads"`
}

// Reserve toma max(marca, último serial_end) como base y avanza la marca en Count.
func (uc *ReserveSerialsUseCase) Reserve(ctx context.Context, in ReserveInput) (*Reservation, error) {
	if in.Count <= 0 {
		return nil, domain.Errorf(domain.KindInvalidInput, "cantidad de etiquetas inválida: %d", in.Count)
	}
	today := uc.opts.now()
	lot := in.Lot
	if lot == "" {
		lot = today.Format(lotLayout)
	}

	res := &Reservation{
		ProductID: in.ProductID,
		Lot:       lot,
		CreatedOn: today.Format(isoDate),
		ExpiresOn: AddMonthsClamped(today, expiryMonths).Format(isoDate),
	}
	err := uc.tx.Run(ctx, Scope(in.ProductID, lot), func(l repository.Ledger) error {
		p, err := l.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.Errorf(domain.KindNotFound, "producto %d no existe en el catálogo", in.ProductID)
		}
		res.Description = SanitizeLabel(p.Description)

		base, err := l.Watermarks.Get(ctx, in.ProductID, lot)
		if err != nil {
			return err
		}
		if end, ok, err := l.Ranges.MaxSerialEnd(ctx, in.ProductID, lot); err != nil {
			return err
		} else if ok && end > base {
			base = end
		}
		res.First = base + 1
		res.Last = base + int64(in.Count)
		return l.Watermarks.Raise(ctx, in.ProductID, lot, res.Last)
	})
	if err != nil {
		return nil, err
	}

	res.Payloads = make([]string, 0, in.Count)
	for s := res.First; s <= res.Last; s++ {
		res.Payloads = append(res.Payloads, scan.Encode(entity.ScanRecord{
			Serial:      s,
			ProductID:   in.ProductID,
			Description: res.Description,
			Lot:         lot,
			CreatedOn:   res.CreatedOn,
			ExpiresOn:   res.ExpiresOn,
		}))
	}
	return res, nil
}

var labelReplacer = strings.NewReplacer("\r", " ", "\n", " ", "|", "/", "=", "-")

// SanitizeLabel quita separadores del payload y corta a 90 caracteres.
func SanitizeLabel(desc string) string {
	s := strings.TrimSpace(labelReplacer.Replace(desc))
	if utf8.RuneCountInString(s) > maxLabelDescription {
		s = string([]rune(s)[:maxLabelDescription])
	}
	return s
}

// AddMonthsClamped suma meses y, si el día no existe en el mes destino, usa el último día del mes.
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d, lastDay)-1)
}
