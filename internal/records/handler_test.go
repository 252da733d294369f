package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaski/registry/internal/auth"
	"github.com/chaski/registry/internal/config"
	"github.com/chaski/registry/internal/middleware"
	"github.com/chaski/registry/internal/model"
	"github.com/chaski/registry/internal/recordstore"
	"github.com/chaski/registry/internal/session"
)

// memStore is an in-memory record store keyed by table.
type memStore struct {
	tables map[string][]model.Record
	err    error
	calls  int
}

func newMemStore() *memStore {
	return &memStore{tables: map[string][]model.Record{}}
}

func (m *memStore) Create(_ context.Context, table string, fields map[string]any) (*model.Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	rec := model.Record{ID: fmt.Sprintf("rec%d", m.calls), Fields: fields}
	m.tables[table] = append(m.tables[table], rec)
	return &rec, nil
}

func (m *memStore) List(_ context.Context, table string) ([]model.Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.Record{}, m.tables[table]...), nil
}

func (m *memStore) Update(_ context.Context, table, id string, fields map[string]any) (*model.Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	for i, rec := range m.tables[table] {
		if rec.ID == id {
			for k, v := range fields {
				m.tables[table][i].Fields[k] = v
			}
			out := m.tables[table][i]
			return &out, nil
		}
	}
	return nil, &recordstore.APIError{StatusCode: 404, Body: json.RawMessage(`{"error":"NOT_FOUND"}`), Message: "NOT_FOUND"}
}

func (m *memStore) Delete(_ context.Context, table, id string) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	recs := m.tables[table]
	for i, rec := range recs {
		if rec.ID == id {
			m.tables[table] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return &recordstore.APIError{StatusCode: 404, Body: json.RawMessage(`{"error":"NOT_FOUND"}`), Message: "NOT_FOUND"}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func post(t *testing.T, h *Handler, s session.Session, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/saveAirtable", strings.NewReader(body))
	req = req.WithContext(session.WithSession(req.Context(), s))
	rec := httptest.NewRecorder()
	h.Save(rec, req)
	return rec
}

var admin = session.Session{Admin: true}

func TestSave_CreateEchoesFields(t *testing.T) {
	store := newMemStore()
	h := NewHandler(NewService(store, discardLogger()))

	rec := post(t, h, session.Anonymous, `{"table":"eventos","data":{"nombre_evento":"Robofest","afiche_url":[{"url":"https://x/a.png"}]}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Record
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Robofest", got.Fields["nombre_evento"])
	assert.Equal(t, []any{map[string]any{"url": "https://x/a.png"}}, got.Fields["afiche_url"])
	assert.Equal(t, 1, store.calls)
}

func TestSave_ExpiredTokenStillCreates(t *testing.T) {
	store := newMemStore()
	svc := auth.NewService(&config.Config{AdminPassword: "s3cret", JWTSecret: "test-secret"})
	h := middleware.Session(svc, discardLogger())(http.HandlerFunc(NewHandler(NewService(store, discardLogger())).Save))

	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"adm": true,
		"exp": time.Now().Add(-24 * time.Hour).Unix(),
	})
	token, err := stale.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/saveAirtable", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	created := send(`{"table":"eventos","data":{"nombre_evento":"Robofest"}}`)
	require.Equal(t, http.StatusOK, created.Code)
	assert.Len(t, store.tables["eventos"], 1)

	listed := send(`{"table":"eventos","action":"list"}`)
	assert.Equal(t, http.StatusOK, listed.Code)

	// The stale token no longer carries admin rights.
	deleted := send(`{"table":"eventos","action":"delete","id":"rec1"}`)
	assert.Equal(t, http.StatusForbidden, deleted.Code)
	assert.Len(t, store.tables["eventos"], 1)
}

func TestSave_ListReturnsEveryRecord(t *testing.T) {
	store := newMemStore()
	for i := range 4 {
		_, _ = store.Create(context.Background(), "equipos", map[string]any{"nombre_equipo": fmt.Sprintf("team-%d", i)})
	}
	h := NewHandler(NewService(store, discardLogger()))

	rec := post(t, h, session.Anonymous, `{"table":"equipos","action":"list"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got listData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Records, 4)
	for _, r := range got.Records {
		assert.NotEmpty(t, r.ID)
		assert.NotNil(t, r.Fields)
	}
}

func TestSave_ListEmptyTableEncodesArray(t *testing.T) {
	h := NewHandler(NewService(newMemStore(), discardLogger()))

	rec := post(t, h, session.Anonymous, `{"table":"noticias","action":"list"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"records":[]}`, rec.Body.String())
}

func TestSave_DeleteRequiresCapability(t *testing.T) {
	store := newMemStore()
	created, _ := store.Create(context.Background(), "empresas", map[string]any{"nombre_empresa": "Acme"})
	h := NewHandler(NewService(store, discardLogger()))
	body := fmt.Sprintf(`{"table":"empresas","action":"delete","id":%q}`, created.ID)

	rec := post(t, h, session.Anonymous, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, store.tables["empresas"], 1)

	rec = post(t, h, admin, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Empty(t, store.tables["empresas"])
}

func TestSave_Update(t *testing.T) {
	store := newMemStore()
	created, _ := store.Create(context.Background(), "empresas", map[string]any{"nombre_empresa": "Acme", "ciudad": "Cuenca"})
	h := NewHandler(NewService(store, discardLogger()))

	rec := post(t, h, admin, fmt.Sprintf(`{"table":"empresas","action":"update","id":%q,"data":{"ciudad":"Quito"}}`, created.ID))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Record
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Quito", got.Fields["ciudad"])
	assert.Equal(t, "Acme", got.Fields["nombre_empresa"])
}

func TestSave_BadRequests(t *testing.T) {
	store := newMemStore()
	h := NewHandler(NewService(store, discardLogger()))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing data", `{"table":"eventos"}`, `{"error":"Faltan parámetros"}`},
		{"missing table", `{"data":{"a":"b"}}`, `{"error":"Faltan parámetros"}`},
		{"missing table on list", `{"action":"list"}`, `{"error":"Faltan parámetros"}`},
		{"malformed json", `{"table":`, `{"error":"Faltan parámetros"}`},
		{"delete without id", `{"table":"eventos","action":"delete"}`, `{"error":"Falta el id para eliminar"}`},
		{"update without id", `{"table":"eventos","action":"update","data":{}}`, `{"error":"Falta el id para actualizar"}`},
		{"unknown action", `{"table":"eventos","action":"purge"}`, `{"error":"Acción no soportada"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, admin, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
	assert.Zero(t, store.calls, "bad requests must not reach the store")
}

func TestSave_NotConfigured(t *testing.T) {
	h := NewHandler(NewService(nil, discardLogger()))

	rec := post(t, h, admin, `{"table":"eventos","action":"list"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Airtable API key or Base ID not configured"}`, rec.Body.String())
}

func TestSave_UpstreamErrorPassThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"type":"UNKNOWN_FIELD_NAME","message":"Unknown field name: \"color\""}}`))
	}))
	t.Cleanup(upstream.Close)

	store := recordstore.NewAirtable(upstream.URL, "appX", "key", upstream.Client(), discardLogger())
	h := NewHandler(NewService(store, discardLogger()))

	rec := post(t, h, session.Anonymous, `{"table":"eventos","data":{"color":"rojo"}}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{
		"error":"Error al guardar en Airtable",
		"details":{"error":{"type":"UNKNOWN_FIELD_NAME","message":"Unknown field name: \"color\""}},
		"airtable_error":"Unknown field name: \"color\""
	}`, rec.Body.String())

	rec = post(t, h, session.Anonymous, `{"table":"eventos","action":"list"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Error consultando Airtable"`)
}

func TestSave_TransportErrorUsesMessage(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("dial tcp: connection refused")
	h := NewHandler(NewService(store, discardLogger()))

	rec := post(t, h, session.Anonymous, `{"table":"eventos","data":{"nombre_evento":"x"}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error al guardar en Airtable","details":"dial tcp: connection refused"}`, rec.Body.String())
}
