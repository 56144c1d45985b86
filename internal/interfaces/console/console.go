// Package console conecta la estación de escaneo a una terminal: el lector de códigos actúa como
// teclado y cada línea es un QR, un número de packs o un comando.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/application/station"
	"github.com/jhoicas/stock-qr/pkg/encoding"
	"github.com/jhoicas/stock-qr/pkg/logger"
)

// Comandos de la estación.
const (
	CmdOutbound = ":salida"
	CmdInbound  = ":ingreso"
	CmdPartial  = ":parcial"
	CmdFlush    = ":flush"
	CmdSnapshot = ":snapshot"
	CmdStatus   = ":estado"
	CmdQuit     = ":salir"
)

// Console lee líneas, las decodifica y las pasa a la sesión.
type Console struct {
	session  *station.Session
	outbox   *outbox.Dispatcher
	snapshot outbox.SnapshotSource
	decoder  *encoding.Decoder
	out      io.Writer
	log      *logger.Logger
}

// Deps dependencias de la consola. Outbox y Snapshot son opcionales.
type Deps struct {
	Session  *station.Session
	Outbox   *outbox.Dispatcher
	Snapshot outbox.SnapshotSource
	Decoder  *encoding.Decoder
	Out      io.Writer
	Logger   *logger.Logger
}

func New(d Deps) *Console {
	c := &Console{
		session:  d.Session,
		outbox:   d.Outbox,
		snapshot: d.Snapshot,
		decoder:  d.Decoder,
		out:      d.Out,
		log:      d.Logger,
	}
	if c.decoder == nil {
		c.decoder, _ = encoding.NewDecoder(encoding.UTF8)
	}
	if c.out == nil {
		c.out = io.Discard
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	return c
}

// Run procesa in hasta EOF, :salir o cancelación de ctx.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.printf("%s\n", c.banner())
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := c.Handle(ctx, c.decoder.Line(sc.Bytes())); quit {
			return nil
		}
	}
	return sc.Err()
}

// Handle procesa una línea ya decodificada. Devuelve true cuando el operador pide salir.
func (c *Console) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ":") {
		return c.command(ctx, line)
	}

	var ev station.Event
	if c.session.Mode() == station.ModeInbound && c.session.State() == station.AwaitPacks && !strings.Contains(line, "=") {
		ev = c.session.Packs(ctx, line)
	} else {
		ev = c.session.Scan(ctx, line)
	}
	c.show(ev)
	return false
}

func (c *Console) command(ctx context.Context, line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case CmdQuit:
		c.printf("hasta luego\n")
		return true
	case CmdOutbound:
		c.session.SetMode(station.ModeOutbound)
		c.printf("modo SALIDA: escaneá el QR a dar de baja\n")
	case CmdInbound:
		c.session.SetMode(station.ModeInbound)
		c.printf("modo INGRESO: escaneá el QR de INICIO\n")
	case CmdPartial:
		on := !c.session.Partial()
		if len(fields) > 1 {
			on = fields[1] == "on" || fields[1] == "si" || fields[1] == "1"
		}
		ev, committed := c.session.SetPartial(ctx, on)
		c.printf("último pallet parcial: %s\n", onOff(on))
		if committed {
			c.show(ev)
		}
	case CmdFlush:
		c.flush(ctx)
	case CmdSnapshot:
		c.sendSnapshot(ctx)
	case CmdStatus:
		c.printf("%s\n", c.banner())
	default:
		c.printf("comando desconocido %q (%s, %s, %s on|off, %s, %s, %s, %s)\n",
			fields[0], CmdInbound, CmdOutbound, CmdPartial, CmdFlush, CmdSnapshot, CmdStatus, CmdQuit)
	}
	return false
}

func (c *Console) flush(ctx context.Context) {
	if c.outbox == nil {
		c.printf("sincronización no configurada\n")
		return
	}
	sent, err := c.outbox.Flush(ctx, 0)
	pending, _ := c.outbox.Pending(ctx)
	if err != nil {
		c.log.Warn().Err(err).Int("sent", sent).Msg("flush manual incompleto")
		c.printf("ADVERTENCIA: %d enviados, %d en cola: %v\n", sent, pending, err)
		return
	}
	c.printf("cola sincronizada: %d enviados, %d en cola\n", sent, pending)
}

func (c *Console) sendSnapshot(ctx context.Context) {
	if c.outbox == nil || c.snapshot == nil {
		c.printf("sincronización no configurada\n")
		return
	}
	res, err := c.outbox.SendSnapshot(ctx, c.snapshot)
	if err != nil {
		c.log.Warn().Err(err).Str("snapshot_id", res.SnapshotID).Msg("snapshot incompleto")
		c.printf("ADVERTENCIA: snapshot incompleto (%d/%d bloques): %v\n", res.BlocksSent, res.BlocksTotal, err)
		return
	}
	c.printf("snapshot %s enviado: %d productos en %d bloques\n", res.SnapshotID, res.Rows, res.BlocksSent)
}

func (c *Console) show(ev station.Event) {
	switch ev.Kind {
	case station.EventRejected:
		c.printf("%s\n", ev.Message)
	case station.EventCommitted, station.EventOutboundRecorded:
		c.printf("OK %s\n", ev.Message)
		if w := syncWarning(ev); w != "" {
			c.printf("ADVERTENCIA: %s\n", w)
		}
	default:
		if ev.Message != "" {
			c.printf("%s\n", ev.Message)
		}
	}
}

func syncWarning(ev station.Event) string {
	switch {
	case ev.Inbound != nil:
		return ev.Inbound.Sync.Warning
	case ev.Outbound != nil:
		return ev.Outbound.Sync.Warning
	}
	return ""
}

func (c *Console) banner() string {
	mode := "INGRESO"
	if c.session.Mode() == station.ModeOutbound {
		mode = "SALIDA"
	}
	return fmt.Sprintf("estación lista | modo %s | paso %s | parcial %s", mode, c.session.State(), onOff(c.session.Partial()))
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
