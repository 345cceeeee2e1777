package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcc "github.com/invorya/cyclecount-api/internal/application/cyclecount"
	"github.com/invorya/cyclecount-api/internal/domain"
	"github.com/invorya/cyclecount-api/internal/domain/entity"
	"github.com/invorya/cyclecount-api/internal/domain/repository"
	apphttp "github.com/invorya/cyclecount-api/internal/interfaces/http"
	"github.com/invorya/cyclecount-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos (app.Test es secuencial, sin locking)
// ──────────────────────────────────────────────────────────────────────────────

type memRepos struct {
	sessions map[string]*entity.CycleCountSession
	audits   map[string]*entity.AuditRecord
	stock    map[string]*entity.StockBalance
}

func newMemRepos() *memRepos {
	return &memRepos{
		sessions: map[string]*entity.CycleCountSession{},
		audits:   map[string]*entity.AuditRecord{},
		stock: map[string]*entity.StockBalance{
			"SKU001": {SKUID: "SKU001", Description: "Harina de trigo 25kg",
				BaseUnit: entity.BaseUnitCase, Sellable: decimal.NewFromInt(100)},
		},
	}
}

func (m *memRepos) Create(s *entity.CycleCountSession) error {
	for _, existing := range m.sessions {
		if existing.Status == entity.SessionStatusActive {
			return domain.ErrSessionConflict
		}
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memRepos) GetByID(id string) (*entity.CycleCountSession, error) {
	return m.sessions[id], nil
}

func (m *memRepos) GetActive() (*entity.CycleCountSession, error) {
	for _, s := range m.sessions {
		if s.Status == entity.SessionStatusActive {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memRepos) GetForUpdate(id string) (*entity.CycleCountSession, error) {
	return m.sessions[id], nil
}

func (m *memRepos) ReplaceItems(sessionID string, items []entity.InventoryLine) error {
	m.sessions[sessionID].Items = items
	return nil
}

func (m *memRepos) SaveLineMovements(sessionID, skuID string, movements []entity.Movement) error {
	line := m.sessions[sessionID].FindLine(skuID)
	if line == nil {
		return domain.ErrNotFound
	}
	line.Movements = movements
	return nil
}

func (m *memRepos) UpdateStatus(s *entity.CycleCountSession) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *memRepos) CreateAudit(a *entity.AuditRecord) error {
	m.audits[a.ID] = a
	return nil
}

func (m *memRepos) GetAuditByID(id string) (*entity.AuditRecord, error) {
	return m.audits[id], nil
}

func (m *memRepos) ListAll() ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	for _, b := range m.stock {
		out = append(out, *b)
	}
	return out, nil
}

func (m *memRepos) StockForUpdate(skuID string) (*entity.StockBalance, error) {
	return m.stock[skuID], nil
}

func (m *memRepos) Upsert(b *entity.StockBalance) error {
	m.stock[b.SKUID] = b
	return nil
}

// Adaptadores con nombres de método en conflicto (GetByID, GetForUpdate)
type auditAdapter struct{ m *memRepos }

func (a auditAdapter) Create(r *entity.AuditRecord) error              { return a.m.CreateAudit(r) }
func (a auditAdapter) GetByID(id string) (*entity.AuditRecord, error) { return a.m.GetAuditByID(id) }

type stockAdapter struct{ m *memRepos }

func (s stockAdapter) ListAll() ([]entity.StockBalance, error) { return s.m.ListAll() }
func (s stockAdapter) GetForUpdate(id string) (*entity.StockBalance, error) {
	return s.m.StockForUpdate(id)
}
func (s stockAdapter) Upsert(b *entity.StockBalance) error { return s.m.Upsert(b) }

type memTxRunner struct{ m *memRepos }

func (r memTxRunner) Run(_ context.Context, fn func(
	sessionRepo repository.SessionRepository,
	auditRepo repository.AuditRepository,
	stockRepo repository.StockRepository,
) error) error {
	return fn(r.m, auditAdapter{r.m}, stockAdapter{r.m})
}

type memSnapshot struct{ m *memRepos }

func (s memSnapshot) Fetch(context.Context) ([]entity.StockBalance, error) { return s.m.ListAll() }

type memOtp struct{ code string }

func (o *memOtp) Issue(_ context.Context, _ string) (*appcc.OtpChallenge, error) {
	return &appcc.OtpChallenge{ChallengeID: "ch-1", ExpiresAt: time.Now().Add(10 * time.Minute)}, nil
}
func (o *memOtp) VerifyAndConsume(_ context.Context, _, code string) (bool, error) {
	return code == o.code, nil
}

type noopOrders struct{}

func (noopOrders) Suspend(context.Context) error { return nil }
func (noopOrders) Resume(context.Context) error  { return nil }

type memDrafts struct{ blobs map[string][]byte }

func (d *memDrafts) Save(_ context.Context, id string, p []byte) error {
	d.blobs[id] = p
	return nil
}
func (d *memDrafts) Load(_ context.Context, id string) ([]byte, error) {
	b, ok := d.blobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func buildTestApp() *fiber.App {
	m := newMemRepos()
	uc := appcc.NewSessionUseCase(
		memTxRunner{m}, m, auditAdapter{m},
		memSnapshot{m}, &memOtp{code: "482915"}, noopOrders{},
		&memDrafts{blobs: map[string][]byte{}}, logger.NewNop(),
	)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Sessions: uc})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, userID string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), "body: %s", raw)
	}
	return resp, payload
}

// initiateAndLoad crea la sesión y carga el snapshot, devuelve el session_id.
func initiateAndLoad(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/", "", "operador-1")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := body["session_id"].(string)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/snapshot", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestInitiate_Creada(t *testing.T) {
	app := buildTestApp()
	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/", "", "operador-1")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ACTIVE", body["status"])
	assert.Equal(t, "operador-1", body["initiated_by"])
}

func TestInitiate_SinHeaderDeUsuario(t *testing.T) {
	app := buildTestApp()
	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_USER", body["code"])
}

func TestInitiate_ConflictoConSesionActiva(t *testing.T) {
	app := buildTestApp()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/cycle-counts/", "", "operador-1")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/", "", "operador-2")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SESSION_CONFLICT", body["code"])
}

func TestActive_SinSesionVigente(t *testing.T) {
	app := buildTestApp()
	resp, body := doJSON(t, app, http.MethodGet, "/api/cycle-counts/active", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestGet_SesionInexistente(t *testing.T) {
	app := buildTestApp()
	resp, body := doJSON(t, app, http.MethodGet, "/api/cycle-counts/no-existe", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos y validación derivada
// ──────────────────────────────────────────────────────────────────────────────

func TestAddMovement_DevuelveLineaConValidacionDerivada(t *testing.T) {
	app := buildTestApp()
	id := initiateAndLoad(t, app)

	// Sin reason_code: se guarda igual pero la línea queda marcada
	resp, body := doJSON(t, app, http.MethodPost,
		"/api/cycle-counts/"+id+"/lines/SKU001/movements",
		`{"type":"SELLABLE_TO_DAMAGED","quantity":"5"}`, "")
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["has_error"])
	assert.Contains(t, body["error_message"], "requiere reason_code")

	movs := body["movements"].([]any)
	require.Len(t, movs, 1)
}

func TestAddMovement_FechaInvalida(t *testing.T) {
	app := buildTestApp()
	id := initiateAndLoad(t, app)

	resp, body := doJSON(t, app, http.MethodPost,
		"/api/cycle-counts/"+id+"/lines/SKU001/movements",
		`{"type":"SELLABLE_TO_EXPIRED","quantity":"5","reason_code":"1","new_mfg_date":"15-03-2026"}`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

func TestRequestOtp_ConViolacionesDevuelve422(t *testing.T) {
	app := buildTestApp()
	id := initiateAndLoad(t, app)

	resp, _ := doJSON(t, app, http.MethodPost,
		"/api/cycle-counts/"+id+"/lines/SKU001/movements",
		`{"type":"SELLABLE_TO_DAMAGED","quantity":"5"}`, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/otp", "", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	violations := body["violations"].([]any)
	require.Len(t, violations, 1)
	first := violations[0].(map[string]any)
	assert.Equal(t, "SKU001", first["sku_id"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Commit
// ──────────────────────────────────────────────────────────────────────────────

func TestCommit_OtpMalformadoDevuelve400(t *testing.T) {
	app := buildTestApp()
	id := initiateAndLoad(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/commit",
		`{"otp":"12345"}`, "supervisor-1")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MALFORMED_OTP", body["code"])
}

func TestCommit_OtpIncorrectoDevuelve403(t *testing.T) {
	app := buildTestApp()
	id := initiateAndLoad(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/commit",
		`{"otp":"000000"}`, "supervisor-1")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "OTP_MISMATCH", body["code"])
}

func TestCommit_FlujoCompletoDevuelveAuditoria(t *testing.T) {
	app := buildTestApp()
	id := initiateAndLoad(t, app)

	resp, _ := doJSON(t, app, http.MethodPost,
		"/api/cycle-counts/"+id+"/lines/SKU001/movements",
		`{"type":"SELLABLE_TO_DAMAGED","quantity":"5","reason_code":"1"}`, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/otp", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/commit",
		`{"otp":"482915"}`, "supervisor-1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["session_id"])
	assert.Equal(t, "supervisor-1", body["committed_by"])
	auditID := body["audit_id"].(string)
	assert.Equal(t, "/api/cycle-counts/audits/"+auditID+"/document", body["document_ref"])

	// El registro queda consultable y el documento se descarga
	resp, audit := doJSON(t, app, http.MethodGet, "/api/cycle-counts/audits/"+auditID, "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, auditID, audit["audit_id"])

	req := httptest.NewRequest(http.MethodGet, "/api/cycle-counts/audits/"+auditID+"/document?format=csv", nil)
	dl, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, dl.StatusCode)
	assert.Contains(t, dl.Header.Get("Content-Disposition"), "ajuste-"+auditID+".csv")
}

func TestCommit_SinHeaderDeUsuario(t *testing.T) {
	app := buildTestApp()
	id := initiateAndLoad(t, app)

	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/commit",
		`{"otp":"482915"}`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_USER", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría y descarga
// ──────────────────────────────────────────────────────────────────────────────

func TestAudit_Inexistente(t *testing.T) {
	app := buildTestApp()
	resp, body := doJSON(t, app, http.MethodGet, "/api/cycle-counts/audits/no-existe", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestDownloadDocument_FormatoNoSoportado(t *testing.T) {
	app := buildTestApp()
	id := initiateAndLoad(t, app)

	resp, _ := doJSON(t, app, http.MethodPost,
		"/api/cycle-counts/"+id+"/lines/SKU001/movements",
		`{"type":"SELLABLE_TO_ALLOCATED","quantity":"2"}`, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/otp", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, body := doJSON(t, app, http.MethodPost, "/api/cycle-counts/"+id+"/commit",
		`{"otp":"482915"}`, "supervisor-1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	auditID := body["audit_id"].(string)

	resp, body = doJSON(t, app, http.MethodGet,
		"/api/cycle-counts/audits/"+auditID+"/document?format=docx", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_FORMAT", body["code"])
}
