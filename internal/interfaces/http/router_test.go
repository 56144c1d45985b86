package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-qr/internal/application/catalog"
	"github.com/jhoicas/stock-qr/internal/application/dto"
	"github.com/jhoicas/stock-qr/internal/application/inventory"
	"github.com/jhoicas/stock-qr/internal/application/outbox"
	"github.com/jhoicas/stock-qr/internal/domain/entity"
	"github.com/jhoicas/stock-qr/internal/domain/scan"
	"github.com/jhoicas/stock-qr/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/stock-qr/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-qr/pkg/jwt"
)

type memorySink struct{ payloads []json.RawMessage }

func (s *memorySink) Deliver(_ context.Context, p json.RawMessage) error {
	s.payloads = append(s.payloads, p)
	return nil
}

func newAPI(t *testing.T) (*fiber.App, *memorySink) {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ledger := sqlite.NewLedger(db)
	require.NoError(t, ledger.Products.Upsert(ctx, &entity.Product{ID: 42, Description: "Widget"}))

	sink := &memorySink{}
	dispatcher := outbox.NewDispatcher(ledger.Outbox, sink)
	tx := sqlite.NewTxRunner(db)
	opts := []inventory.Option{inventory.WithFlusher(dispatcher)}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName:    "stock-qr",
		Inbound:        inventory.NewRegisterInboundUseCase(tx, opts...),
		Outbound:       inventory.NewRecordOutboundUseCase(tx, opts...),
		Rollback:       inventory.NewRollbackUseCase(tx, opts...),
		Reconciliation: inventory.NewReconciliationUseCase(ledger),
		Reserve:        inventory.NewReserveSerialsUseCase(tx),
		Products:       catalog.NewProductUseCase(ledger.Products, tx),
		Outbox:         dispatcher,
		JWTSecret:      testJWTSecret,
	})
	return app, sink
}

func qrFor(serial int64) string {
	return scan.Encode(entity.ScanRecord{Serial: serial, ProductID: 42, Description: "Widget", Lot: "010124", CreatedOn: "2024-01-01", ExpiresOn: "2024-07-01"})
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestRouter_FlujoIngresoSalidaAjuste(t *testing.T) {
	app, sink := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/inbound", pkgjwt.RoleOperator, dto.InboundRequest{
		StartPayload: qrFor(1), EndPayload: qrFor(10), TrailingPacks: 7,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var in dto.InboundResponse
	decode(t, resp, &in)
	assert.Equal(t, int64(9), in.Stock.Pallets)
	assert.Equal(t, int64(7), in.Stock.Packs)
	assert.Equal(t, 1, in.Sync.Sent)

	resp = call(t, app, http.MethodPost, "/api/outbound", pkgjwt.RoleOperator, dto.OutboundRequest{Payload: qrFor(3)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.OutboundResponse
	decode(t, resp, &out)
	assert.Equal(t, "pallet", out.Movement.UnitType)
	assert.Equal(t, int64(8), out.Stock.Pallets)

	resp = call(t, app, http.MethodPost, "/api/outbound", pkgjwt.RoleOperator, dto.OutboundRequest{Payload: qrFor(3)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "DUPLICATE_MOVEMENT", e.Code)

	// El operador no puede ajustar.
	rb := dto.RollbackRequest{ProductID: 42, Lot: "010124", UnitType: "packs", Quantity: 7}
	resp = call(t, app, http.MethodPost, "/api/adjustments/rollback", pkgjwt.RoleOperator, rb)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// El rango 1-10 tiene la salida de la serie 3: el ajuste se rechaza completo.
	resp = call(t, app, http.MethodPost, "/api/adjustments/rollback", pkgjwt.RoleSupervisor, rb)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	decode(t, resp, &e)
	assert.Equal(t, "RANGE_ALREADY_CONSUMED", e.Code)

	resp = call(t, app, http.MethodGet, "/api/stock/42?lot=010124", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st dto.StockResponse
	decode(t, resp, &st)
	assert.Equal(t, int64(8), st.Pallets)
	assert.Equal(t, int64(7), st.Packs)

	assert.Len(t, sink.payloads, 2)
}

func TestRouter_RollbackSupervisor(t *testing.T) {
	app, _ := newAPI(t)
	resp := call(t, app, http.MethodPost, "/api/inbound", pkgjwt.RoleOperator, dto.InboundRequest{StartPayload: qrFor(1), EndPayload: qrFor(5)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/adjustments/rollback", pkgjwt.RoleSupervisor,
		dto.RollbackRequest{ProductID: 42, Lot: "010124", UnitType: "pallet", Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rb dto.RollbackResponse
	decode(t, resp, &rb)
	require.NotNil(t, rb.NewLastSerial)
	assert.Equal(t, int64(3), *rb.NewLastSerial)
	assert.Equal(t, int64(3), rb.Stock.Pallets)
	require.Len(t, rb.Steps, 1)
	assert.Equal(t, "shrink", rb.Steps[0].Action)
}

func TestRouter_Validaciones(t *testing.T) {
	app, _ := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/adjustments/rollback", pkgjwt.RoleSupervisor,
		dto.RollbackRequest{ProductID: 42, Lot: "A", UnitType: "caja", Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	decode(t, resp, &e)
	assert.Equal(t, "VALIDATION", e.Code)

	resp = call(t, app, http.MethodPost, "/api/scans/parse", pkgjwt.RoleOperator, dto.ParseScanRequest{Payload: "hola"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decode(t, resp, &e)
	assert.Equal(t, "UNRECOGNIZED_FORMAT", e.Code)

	resp = call(t, app, http.MethodPost, "/api/outbound", pkgjwt.RoleOperator, dto.OutboundRequest{Payload: qrFor(77)})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/stock/abc", pkgjwt.RoleOperator, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/stock", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ParseScan(t *testing.T) {
	app, _ := newAPI(t)
	resp := call(t, app, http.MethodPost, "/api/scans/parse", pkgjwt.RoleOperator,
		dto.ParseScanRequest{Payload: "NS=000007|PRD=42.0|DSC=Widget|LOT=010124|FEC=01/01/24|VTO=01/07/24"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s dto.ScanResponse
	decode(t, resp, &s)
	assert.Equal(t, int64(7), s.Serial)
	assert.Equal(t, "42", s.ProductCode)
	assert.Equal(t, "2024-07-01", s.ExpiresOn)
}

func TestRouter_StockListYExport(t *testing.T) {
	app, _ := newAPI(t)
	resp := call(t, app, http.MethodPost, "/api/inbound", pkgjwt.RoleOperator, dto.InboundRequest{StartPayload: qrFor(1), EndPayload: qrFor(4)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/stock?limit=10", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.StockListResponse
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Total)
	assert.Equal(t, int64(4), list.Items[0].Pallets)

	resp = call(t, app, http.MethodGet, "/api/stock/export.xlsx", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Stock", "D2")
	require.NoError(t, err)
	assert.Equal(t, "4", v)
}

func TestRouter_ReservaYOutbox(t *testing.T) {
	app, sink := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/serials/reserve", pkgjwt.RoleOperator, dto.ReserveRequest{ProductID: 42, Lot: "010124", Count: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res inventory.Reservation
	decode(t, resp, &res)
	assert.Equal(t, int64(1), res.First)
	assert.Len(t, res.Payloads, 2)

	resp = call(t, app, http.MethodGet, "/api/outbox", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var q dto.OutboxListResponse
	decode(t, resp, &q)
	assert.Equal(t, 0, q.Pending)

	resp = call(t, app, http.MethodPost, "/api/outbox/flush", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/outbox/snapshot", pkgjwt.RoleOperator, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPost, "/api/outbox/snapshot", pkgjwt.RoleSupervisor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap dto.SnapshotResponse
	decode(t, resp, &snap)
	assert.Equal(t, 1, snap.Rows)
	assert.Equal(t, 1, snap.BlocksSent)
	assert.Empty(t, snap.Warning)
	require.Len(t, sink.payloads, 1)
	assert.Contains(t, string(sink.payloads[0]), "bulk_snapshot_pp")
}

func TestRouter_Health(t *testing.T) {
	app, _ := newAPI(t)
	resp := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Catalogo(t *testing.T) {
	app, _ := newAPI(t)

	resp := call(t, app, http.MethodPut, "/api/products/7", pkgjwt.RoleOperator, dto.ProductRequest{Description: "Yerba"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/products/7", pkgjwt.RoleSupervisor, dto.ProductRequest{Description: "Yerba 1kg"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/products/7", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	assert.Equal(t, "Yerba 1kg", p.Description)

	resp = call(t, app, http.MethodGet, "/api/products/99", pkgjwt.RoleOperator, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/products/8", pkgjwt.RoleSupervisor, dto.ProductRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Import desde planilla.
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"id_producto", "descripcion"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{8, "Mate"}))
	var xlsx bytes.Buffer
	require.NoError(t, f.Write(&xlsx))
	_ = f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "catalogo.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleSupervisor))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var imp dto.ImportResponse
	decode(t, resp, &imp)
	assert.Equal(t, 1, imp.Imported)

	resp = call(t, app, http.MethodGet, "/api/products", pkgjwt.RoleOperator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ProductListResponse
	decode(t, resp, &list)
	assert.Equal(t, 3, list.Page.Total)
	require.Len(t, list.Items, 3)
	assert.Equal(t, int64(7), list.Items[0].ID)
	assert.Equal(t, int64(42), list.Items[2].ID)
}
