package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paragony/internal/auth"
	"paragony/internal/services"
	"paragony/internal/storage"
)

type testAPI struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	jwtManager := auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	srv := NewServer(":0",
		repo,
		services.NewReceiptService(repo, nil),
		auth.NewPasswordAuthenticator(repo),
		jwtManager,
		[]string{"http://localhost:5173"},
	)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	api := &testAPI{t: t, server: ts}
	resp := api.do(http.MethodPost, "/api/auth/register", map[string]any{
		"email":        "test@example.com",
		"display_name": "Test",
		"password":     "correct horse",
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("register = %d: %s", resp.status, resp.raw)
	}
	api.token = resp.body["token"].(string)
	return api
}

type apiResponse struct {
	status int
	raw    []byte
	body   map[string]any
	list   []any
}

func (a *testAPI) do(method, path string, payload any) apiResponse {
	a.t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			a.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	if err != nil {
		a.t.Fatalf("new request: %v", err)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.server.Client().Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		a.t.Fatalf("read body: %v", err)
	}

	out := apiResponse{status: resp.StatusCode, raw: raw}
	if len(raw) > 0 {
		var asMap map[string]any
		if json.Unmarshal(raw, &asMap) == nil {
			out.body = asMap
		}
		var asList []any
		if json.Unmarshal(raw, &asList) == nil {
			out.list = asList
		}
	}
	return out
}

func (a *testAPI) createOwner(name string, payer bool) int64 {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/api/owners", map[string]any{"name": name, "payer": payer})
	if resp.status != http.StatusCreated {
		a.t.Fatalf("create owner = %d: %s", resp.status, resp.raw)
	}
	return int64(resp.body["id"].(float64))
}

func (a *testAPI) createReceipt(payer int64, shop, date string, items ...map[string]any) int64 {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/api/receipts", map[string]any{
		"payer":            payer,
		"shop":             shop,
		"transaction_type": "expense",
		"payment_date":     date,
		"items":            items,
	})
	if resp.status != http.StatusCreated {
		a.t.Fatalf("create receipt = %d: %s", resp.status, resp.raw)
	}
	return int64(resp.body["id"].(float64))
}

func item(value float64, category string, owners ...int64) map[string]any {
	return map[string]any{
		"category":    category,
		"value":       value,
		"description": "thing",
		"quantity":    1,
		"owners":      owners,
	}
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	t.Run("login returns a working token", func(t *testing.T) {
		resp := api.do(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "test@example.com",
			"password": "correct horse",
		})
		if resp.status != http.StatusOK {
			t.Fatalf("login = %d: %s", resp.status, resp.raw)
		}
		if resp.body["token"] == "" {
			t.Error("expected a token in the login response")
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		resp := api.do(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "test@example.com",
			"password": "wrong",
		})
		if resp.status != http.StatusUnauthorized {
			t.Fatalf("login = %d, want 401", resp.status)
		}
		if resp.body["error"] == "" {
			t.Error("expected an error message")
		}
	})

	t.Run("protected route requires a token", func(t *testing.T) {
		bare := &testAPI{t: t, server: api.server}
		resp := bare.do(http.MethodGet, "/api/owners", nil)
		if resp.status != http.StatusUnauthorized {
			t.Fatalf("unauthenticated request = %d, want 401", resp.status)
		}
	})

	t.Run("weak password rejected on register", func(t *testing.T) {
		resp := api.do(http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "b@example.com",
			"password": "short",
		})
		if resp.status != http.StatusBadRequest {
			t.Fatalf("register = %d, want 400", resp.status)
		}
	})
}

func TestOwnerEndpoints(t *testing.T) {
	api := newTestAPI(t)
	id := api.createOwner("Ala", true)

	t.Run("list", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/owners", nil)
		if resp.status != http.StatusOK || len(resp.list) != 1 {
			t.Fatalf("list = %d %s", resp.status, resp.raw)
		}
	})

	t.Run("update", func(t *testing.T) {
		resp := api.do(http.MethodPut, fmt.Sprintf("/api/owners/%d", id), map[string]any{
			"name": "Alicja", "payer": false,
		})
		if resp.status != http.StatusOK || resp.body["name"] != "Alicja" {
			t.Fatalf("update = %d %s", resp.status, resp.raw)
		}
	})

	t.Run("update missing owner", func(t *testing.T) {
		resp := api.do(http.MethodPut, "/api/owners/999", map[string]any{"name": "X"})
		if resp.status != http.StatusNotFound {
			t.Fatalf("update = %d, want 404", resp.status)
		}
	})

	t.Run("delete", func(t *testing.T) {
		resp := api.do(http.MethodDelete, fmt.Sprintf("/api/owners/%d", id), nil)
		if resp.status != http.StatusNoContent {
			t.Fatalf("delete = %d, want 204", resp.status)
		}
	})
}

func TestReceiptEndpoints(t *testing.T) {
	api := newTestAPI(t)
	p := api.createOwner("P", true)
	q := api.createOwner("Q", false)

	recID := api.createReceipt(p, "Lidl", "2025-01-15",
		item(100, "food_drinks", p, q),
		item(25.50, "alcohol", q),
	)

	t.Run("get returns nested items", func(t *testing.T) {
		resp := api.do(http.MethodGet, fmt.Sprintf("/api/receipts/%d", recID), nil)
		if resp.status != http.StatusOK {
			t.Fatalf("get = %d: %s", resp.status, resp.raw)
		}
		items := resp.body["items"].([]any)
		if len(items) != 2 {
			t.Fatalf("items = %d, want 2", len(items))
		}
		first := items[0].(map[string]any)
		if first["value"].(float64) != 100.0 {
			t.Errorf("item value = %v, want 100", first["value"])
		}
		if resp.body["payment_date"] != "2025-01-15" {
			t.Errorf("payment_date = %v", resp.body["payment_date"])
		}
	})

	t.Run("list filters by month", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/receipts?year=2025&month=1", nil)
		if resp.status != http.StatusOK || len(resp.list) != 1 {
			t.Fatalf("list = %d %s", resp.status, resp.raw)
		}
		resp = api.do(http.MethodGet, "/api/receipts?year=2025&month=2", nil)
		if resp.status != http.StatusOK || len(resp.list) != 0 {
			t.Fatalf("list = %d %s, want empty", resp.status, resp.raw)
		}
	})

	t.Run("update replaces items", func(t *testing.T) {
		resp := api.do(http.MethodPut, fmt.Sprintf("/api/receipts/%d", recID), map[string]any{
			"payer":            p,
			"shop":             "Biedronka",
			"transaction_type": "expense",
			"payment_date":     "2025-01-16",
			"items":            []map[string]any{item(10, "fuel", p)},
		})
		if resp.status != http.StatusOK {
			t.Fatalf("update = %d: %s", resp.status, resp.raw)
		}
		if len(resp.body["items"].([]any)) != 1 {
			t.Fatalf("items after update = %v", resp.body["items"])
		}
	})

	t.Run("invalid category rejected", func(t *testing.T) {
		resp := api.do(http.MethodPost, "/api/receipts", map[string]any{
			"payer":            p,
			"shop":             "Lidl",
			"transaction_type": "expense",
			"payment_date":     "2025-01-15",
			"items":            []map[string]any{item(10, "nonsense", p)},
		})
		if resp.status != http.StatusBadRequest {
			t.Fatalf("create = %d, want 400: %s", resp.status, resp.raw)
		}
	})

	t.Run("over-long description rejected", func(t *testing.T) {
		it := item(10, "fuel", p)
		it["description"] = strings.Repeat("x", 300)
		resp := api.do(http.MethodPost, "/api/receipts", map[string]any{
			"payer":            p,
			"shop":             "Lidl",
			"transaction_type": "expense",
			"payment_date":     "2025-01-15",
			"items":            []map[string]any{it},
		})
		if resp.status != http.StatusBadRequest {
			t.Fatalf("create = %d, want 400: %s", resp.status, resp.raw)
		}
	})

	t.Run("non-payer owner rejected as payer", func(t *testing.T) {
		resp := api.do(http.MethodPost, "/api/receipts", map[string]any{
			"payer":            q,
			"shop":             "Lidl",
			"transaction_type": "expense",
			"payment_date":     "2025-01-15",
			"items":            []map[string]any{item(10, "fuel", q)},
		})
		if resp.status != http.StatusBadRequest {
			t.Fatalf("create = %d, want 400: %s", resp.status, resp.raw)
		}
	})

	t.Run("string value accepted", func(t *testing.T) {
		resp := api.do(http.MethodPost, "/api/receipts", map[string]any{
			"payer":            p,
			"shop":             "Orlen",
			"transaction_type": "expense",
			"payment_date":     "2025-01-20",
			"items": []map[string]any{{
				"category": "fuel", "value": "49,99", "description": "diesel", "quantity": 1,
				"owners": []int64{p},
			}},
		})
		if resp.status != http.StatusCreated {
			t.Fatalf("create = %d: %s", resp.status, resp.raw)
		}
		items := resp.body["items"].([]any)
		if v := items[0].(map[string]any)["value"].(float64); v != 49.99 {
			t.Errorf("value = %v, want 49.99", v)
		}
	})

	t.Run("delete", func(t *testing.T) {
		resp := api.do(http.MethodDelete, fmt.Sprintf("/api/receipts/%d", recID), nil)
		if resp.status != http.StatusNoContent {
			t.Fatalf("delete = %d, want 204", resp.status)
		}
		resp = api.do(http.MethodGet, fmt.Sprintf("/api/receipts/%d", recID), nil)
		if resp.status != http.StatusNotFound {
			t.Fatalf("get after delete = %d, want 404", resp.status)
		}
	})
}

func TestChartEndpoints(t *testing.T) {
	api := newTestAPI(t)
	p := api.createOwner("P", true)
	q := api.createOwner("Q", false)

	// One shared item (full value to payer), one not-own item.
	api.createReceipt(p, "Lidl", "2025-01-15", item(100, "food_drinks", p, q))
	api.createReceipt(p, "Orlen", "2025-01-20", item(40, "fuel", q))

	t.Run("bar-persons", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/fetch/bar-persons?month=1&year=2025", nil)
		if resp.status != http.StatusOK {
			t.Fatalf("bar-persons = %d: %s", resp.status, resp.raw)
		}
		shared := resp.body["shared_expenses"].([]any)
		if len(shared) != 1 {
			t.Fatalf("shared_expenses = %v", shared)
		}
		entry := shared[0].(map[string]any)
		if entry["payer"].(float64) != float64(p) || entry["expense_sum"].(float64) != 100.0 {
			t.Errorf("shared entry = %v, want payer %d with full 100", entry, p)
		}
		notOwn := resp.body["not_own_expenses"].([]any)
		if len(notOwn) != 1 || notOwn[0].(map[string]any)["expense_sum"].(float64) != 40.0 {
			t.Errorf("not_own_expenses = %v", notOwn)
		}
	})

	t.Run("bar-persons missing params", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/fetch/bar-persons?month=1", nil)
		if resp.status != http.StatusBadRequest {
			t.Fatalf("bar-persons = %d, want 400", resp.status)
		}
		if resp.body["error"] != "missing parameter: year" {
			t.Errorf("error = %v", resp.body["error"])
		}
	})

	t.Run("bar-shops", func(t *testing.T) {
		resp := api.do(http.MethodGet, fmt.Sprintf("/api/fetch/bar-shops?month=1&year=2025&owners[]=%d&owners[]=%d", p, q), nil)
		if resp.status != http.StatusOK {
			t.Fatalf("bar-shops = %d: %s", resp.status, resp.raw)
		}
		if len(resp.list) != 2 {
			t.Fatalf("bar-shops rows = %v", resp.list)
		}
		top := resp.list[0].(map[string]any)
		if top["shop"] != "Lidl" || top["expense_sum"].(float64) != 100.0 {
			t.Errorf("top shop = %v", top)
		}
	})

	t.Run("bar-shops without owners", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/fetch/bar-shops?month=1&year=2025", nil)
		if resp.status != http.StatusBadRequest {
			t.Fatalf("bar-shops = %d, want 400", resp.status)
		}
	})

	t.Run("line-sums covers every day and divides shares", func(t *testing.T) {
		resp := api.do(http.MethodGet, fmt.Sprintf("/api/fetch/line-sums?month=1&year=2025&owners[]=%d", q), nil)
		if resp.status != http.StatusOK {
			t.Fatalf("line-sums = %d: %s", resp.status, resp.raw)
		}
		if len(resp.list) != 31 {
			t.Fatalf("days = %d, want 31", len(resp.list))
		}
		first := resp.list[0].(map[string]any)
		if first["day"] != "2025-01-01" {
			t.Errorf("first day = %v", first["day"])
		}
		last := resp.list[30].(map[string]any)
		// Q's share: 100/2 from the shared item plus the full 40 not-own item.
		if last["expense"].(float64) != 90.0 {
			t.Errorf("cumulative expense = %v, want 90", last["expense"])
		}
	})

	t.Run("pie-categories", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/fetch/pie-categories?month=1&year=2025", nil)
		if resp.status != http.StatusOK {
			t.Fatalf("pie-categories = %d: %s", resp.status, resp.raw)
		}
		if len(resp.list) != 2 {
			t.Fatalf("rows = %v", resp.list)
		}
		first := resp.list[0].(map[string]any)
		if first["category"] != "food_drinks" || first["fill"] != "var(--color-food_drinks)" {
			t.Errorf("first row = %v", first)
		}
	})
}

func TestSearchEndpoints(t *testing.T) {
	api := newTestAPI(t)
	p := api.createOwner("P", true)
	api.createReceipt(p, "Lidl", "2025-01-15", item(10, "food_drinks", p))

	t.Run("empty q lists all, capitalized", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/recent-shops", nil)
		if resp.status != http.StatusOK {
			t.Fatalf("search = %d: %s", resp.status, resp.raw)
		}
		results := resp.body["results"].([]any)
		if len(results) != 1 || results[0].(map[string]any)["name"] != "Lidl" {
			t.Fatalf("results = %v, want capitalized Lidl", results)
		}
	})

	t.Run("short q returns empty results", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/recent-shops?q=li", nil)
		if resp.status != http.StatusOK {
			t.Fatalf("search = %d", resp.status)
		}
		if len(resp.body["results"].([]any)) != 0 {
			t.Errorf("results = %v, want empty", resp.body["results"])
		}
	})

	t.Run("substring match", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/recent-shops?q=idl", nil)
		results := resp.body["results"].([]any)
		if len(results) != 1 {
			t.Fatalf("results = %v", results)
		}
	})

	t.Run("predictions by frequency", func(t *testing.T) {
		resp := api.do(http.MethodGet, "/api/item-predictions?q=thi", nil)
		if resp.status != http.StatusOK {
			t.Fatalf("predictions = %d: %s", resp.status, resp.raw)
		}
		results := resp.body["results"].([]any)
		if len(results) != 1 {
			t.Fatalf("results = %v", results)
		}
		row := results[0].(map[string]any)
		if row["name"] != "Thing" || row["frequency"].(float64) != 1 {
			t.Errorf("row = %v", row)
		}
	})

	t.Run("rebuild and delete", func(t *testing.T) {
		resp := api.do(http.MethodPost, "/api/recent-shops", map[string]any{"new_shops": []string{"Castorama"}})
		if resp.status != http.StatusOK {
			t.Fatalf("rebuild = %d: %s", resp.status, resp.raw)
		}
		resp = api.do(http.MethodGet, "/api/recent-shops", nil)
		if len(resp.body["results"].([]any)) != 2 {
			t.Fatalf("results after rebuild = %v", resp.body["results"])
		}

		resp = api.do(http.MethodDelete, "/api/recent-shops", nil)
		if resp.status != http.StatusOK {
			t.Fatalf("delete = %d", resp.status)
		}
		resp = api.do(http.MethodGet, "/api/recent-shops", nil)
		if len(resp.body["results"].([]any)) != 0 {
			t.Errorf("results after delete = %v", resp.body["results"])
		}
	})
}

func TestDuplicateEndpoint(t *testing.T) {
	api := newTestAPI(t)
	p := api.createOwner("P", true)

	t.Run("no duplicates", func(t *testing.T) {
		api.createReceipt(p, "Lidl", "2025-01-15", item(10, "food_drinks", p))
		resp := api.do(http.MethodGet, "/api/debug/receipts/duplicates", nil)
		if resp.status != http.StatusOK || resp.body["status"] != "no duplicates" {
			t.Fatalf("duplicates = %d %s", resp.status, resp.raw)
		}
		if _, present := resp.body["duplicates"]; present {
			t.Error("duplicates key should be absent when none exist")
		}
	})

	t.Run("matching tuple reported once with count", func(t *testing.T) {
		api.createReceipt(p, "LIDL", "2025-01-15", item(20, "alcohol", p))
		resp := api.do(http.MethodGet, "/api/debug/receipts/duplicates", nil)
		if resp.body["status"] != "duplicates found" {
			t.Fatalf("status = %v: %s", resp.body["status"], resp.raw)
		}
		groups := resp.body["duplicates"].([]any)
		if len(groups) != 1 {
			t.Fatalf("groups = %v", groups)
		}
		g := groups[0].(map[string]any)
		if g["count"].(float64) != 2 || g["shop"] != "lidl" {
			t.Errorf("group = %v", g)
		}
	})
}

func TestAccountScoping(t *testing.T) {
	api := newTestAPI(t)
	p := api.createOwner("P", true)
	recID := api.createReceipt(p, "Lidl", "2025-01-15", item(10, "food_drinks", p))

	other := &testAPI{t: t, server: api.server}
	resp := other.do(http.MethodPost, "/api/auth/register", map[string]any{
		"email": "other@example.com", "password": "another pass",
	})
	if resp.status != http.StatusCreated {
		t.Fatalf("register = %d: %s", resp.status, resp.raw)
	}
	other.token = resp.body["token"].(string)

	if resp := other.do(http.MethodGet, fmt.Sprintf("/api/receipts/%d", recID), nil); resp.status != http.StatusNotFound {
		t.Fatalf("cross-account get = %d, want 404", resp.status)
	}
	if resp := other.do(http.MethodGet, "/api/owners", nil); len(resp.list) != 0 {
		t.Fatalf("cross-account owners = %s", resp.raw)
	}
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		bare := &testAPI{t: t, server: api.server}
		if resp := bare.do(http.MethodGet, path, nil); resp.status != http.StatusOK {
			t.Errorf("%s = %d, want 200 without auth", path, resp.status)
		}
	}
}
