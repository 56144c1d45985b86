// Package station implementa el flujo de escaneo de una estación: ingreso por rango
// (INICIO, FIN y packs del último pallet parcial) y salida por QR individual.
package station

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/domain"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
)

// State paso del flujo de ingreso.
type State int

const (
	AwaitStart State = iota
	AwaitEnd
	AwaitPacks
)

func (s State) String() string {
	switch s {
	case AwaitStart:
		return "inicio"
	case AwaitEnd:
		return "fin"
	case AwaitPacks:
		return "packs"
	}
	return "desconocido"
}

// Mode qué registra cada escaneo.
type Mode int

const (
	ModeInbound Mode = iota
	ModeOutbound
)

// Inbound registra rangos de ingreso.
type Inbound interface {
	Register(ctx context.Context, in inventory.InboundInput) (*inventory.InboundResult, error)
}

// Outbound registra salidas.
type Outbound interface {
	Record(ctx context.Context, rec entity.ScanRecord) (*inventory.OutboundResult, error)
}

// EventKind resultado de una interacción.
type EventKind int

const (
	EventStartAccepted EventKind = iota + 1
	EventAwaitingPacks
	EventCommitted
	EventOutboundRecorded
	EventHint
	EventRejected
)

// Event lo que la estación muestra al operador tras cada entrada.
type Event struct {
	Kind     EventKind
	Message  string
	Inbound  *inventory.InboundResult
	Outbound *inventory.OutboundResult
	Err      error
}

// Session estado de una estación con un único operador activo. No es segura para uso concurrente.
type Session struct {
	inbound  Inbound
	outbound Outbound
	mode     Mode
	state    State
	partial  bool
	start    *entity.ScanRecord
	end      *entity.ScanRecord
}

// NewSession arranca en modo ingreso esperando el QR de INICIO.
func NewSession(in Inbound, out Outbound) *Session {
	return &Session{inbound: in, outbound: out}
}

// State paso actual del flujo de ingreso.
func (s *Session) State() State { return s.state }

// Mode modo actual.
func (s *Session) Mode() Mode { return s.mode }

// Partial indica si el último pallet del rango se declara parcial.
func (s *Session) Partial() bool { return s.partial }

// SetMode cambia de modo y descarta un rango a medio escanear.
func (s *Session) SetMode(m Mode) {
	s.mode = m
	s.reset()
}

// Scan procesa una línea leída del escáner.
func (s *Session) Scan(ctx context.Context, raw string) Event {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Event{Kind: EventHint, Message: s.prompt()}
	}
	rec, err := scan.Parse(raw)
	if err != nil {
		s.reset()
		return rejected(err)
	}

	if s.mode == ModeOutbound {
		res, err := s.outbound.Record(ctx, rec)
		if err != nil {
			return rejected(err)
		}
		return Event{
			Kind:     EventOutboundRecorded,
			Outbound: res,
			Message: fmt.Sprintf("salida %d | %d | lote %s | serie %d | %s %s | stock %d pallets, %d packs",
				res.Movement.ID, rec.ProductID, rec.Lot, rec.Serial, res.Movement.UnitType,
				unitQty(res.Movement), res.Net.Pallets, res.Net.Packs),
		}
	}

	switch s.state {
	case AwaitStart:
		s.start = &rec
		s.state = AwaitEnd
		return Event{Kind: EventStartAccepted, Message: fmt.Sprintf("INICIO OK: %d | lote %s | serie %d. Escaneá el QR de FIN", rec.ProductID, rec.Lot, rec.Serial)}
	case AwaitEnd:
		s.end = &rec
		if !s.partial {
			return s.commit(ctx, 0)
		}
		s.state = AwaitPacks
		return Event{Kind: EventAwaitingPacks, Message: fmt.Sprintf("FIN OK: %d | lote %s | serie %d. Último pallet parcial: ingresá packs", rec.ProductID, rec.Lot, rec.Serial)}
	default:
		return Event{Kind: EventHint, Message: "modo packs: ingresá packs o desactivá parcial para guardar como completo"}
	}
}

// Packs recibe la cantidad de packs del último pallet. Un valor inválido no reinicia el flujo.
func (s *Session) Packs(ctx context.Context, text string) Event {
	if s.state != AwaitPacks {
		return Event{Kind: EventHint, Message: s.prompt()}
	}
	if !s.partial {
		return s.commit(ctx, 0)
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		return Event{
			Kind:    EventRejected,
			Message: "packs inválido: debe ser un entero >= 1",
			Err:     domain.Errorf(domain.KindInvalidInput, "packs inválido: %q", text),
		}
	}
	return s.commit(ctx, n)
}

// SetPartial cambia el indicador de pallet parcial. Apagarlo mientras se esperan packs guarda el
// rango como completo; en ese caso devuelve el evento y true.
func (s *Session) SetPartial(ctx context.Context, on bool) (Event, bool) {
	s.partial = on
	if !on && s.state == AwaitPacks {
		return s.commit(ctx, 0), true
	}
	return Event{}, false
}

func (s *Session) commit(ctx context.Context, packs int) Event {
	defer s.reset()
	if s.start == nil || s.end == nil {
		return Event{Kind: EventHint, Message: s.prompt()}
	}
	res, err := s.inbound.Register(ctx, inventory.InboundInput{Start: *s.start, End: *s.end, TrailingPacks: packs})
	if err != nil {
		return rejected(err)
	}
	kind := "COMPLETO"
	if packs > 0 {
		kind = fmt.Sprintf("PARCIAL (packs: %d)", packs)
	}
	r := res.Range
	msg := fmt.Sprintf("movimiento guardado (%s) | ID %d | %d %s | lote %s | series %d-%d (rango %d) | pallets %d | stock %d pallets, %d packs",
		kind, r.ID, r.ProductID, res.Net.Description, r.Lot, r.SerialStart, r.SerialEnd, r.Span(), r.Pallets(), res.Net.Pallets, res.Net.Packs)
	return Event{Kind: EventCommitted, Inbound: res, Message: msg}
}

func (s *Session) reset() {
	s.start, s.end = nil, nil
	s.state = AwaitStart
}

func (s *Session) prompt() string {
	if s.mode == ModeOutbound {
		return "escaneá el QR a dar de baja"
	}
	switch s.state {
	case AwaitEnd:
		return "escaneá el QR de FIN"
	case AwaitPacks:
		return "ingresá packs del último pallet"
	}
	return "escaneá el QR de INICIO"
}

func rejected(err error) Event {
	return Event{Kind: EventRejected, Err: err, Message: "ERROR: " + err.Error()}
}

func unitQty(m entity.OutboundMovement) string {
	if m.UnitType == entity.UnitTypePacks {
		return strconv.Itoa(m.PacksQty)
	}
	return "1"
}
