package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"truco-lite/internal/httpapi"
	"truco-lite/internal/ledger"
	"truco-lite/internal/lobby"
)

func newTestRouter(t *testing.T) (*mux.Router, *ledger.MemoryService) {
	t.Helper()
	svc := ledger.NewMemoryService()
	lby := lobby.New(svc)
	router := mux.NewRouter()
	httpapi.New(lby, svc).Register(router)
	return router, svc
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body err: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response err: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, decoded
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rec, body := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", rec.Code, body)
	}
}

func TestCreateJoinStartFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/truco/tables", map[string]any{
		"playerId": "p0", "name": "friday night", "bet": 0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %v", rec.Code, body)
	}
	tableID, _ := body["id"].(string)
	if tableID == "" {
		t.Fatalf("create response missing table id: %v", body)
	}

	rec, body = doJSON(t, router, http.MethodPost, "/api/truco/tables/"+tableID+"/join", map[string]any{
		"playerId": "p1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("join = %d %v", rec.Code, body)
	}

	rec, body = doJSON(t, router, http.MethodPost, "/api/truco/tables/"+tableID+"/start", map[string]any{
		"playerId": "p0",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("start = %d %v", rec.Code, body)
	}
	if body["status"] != "playing" && body["status"] != "handElevenDecision" {
		t.Fatalf("post-start status = %v", body["status"])
	}

	// Only the owner may start.
	rec, _ = doJSON(t, router, http.MethodPost, "/api/truco/tables/"+tableID+"/start", map[string]any{
		"playerId": "p1",
	})
	if rec.Code != http.StatusConflict && rec.Code != http.StatusForbidden {
		t.Fatalf("restart by guest = %d", rec.Code)
	}

	rec, body = doJSON(t, router, http.MethodGet, "/api/truco/tables/"+tableID+"/state?player=p1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("state = %d", rec.Code)
	}
	players, ok := body["players"].([]any)
	if !ok || len(players) != 2 {
		t.Fatalf("state players = %v", body["players"])
	}
	for _, raw := range players {
		ps := raw.(map[string]any)
		hand := ps["hand"].([]any)
		visible := false
		for _, cv := range hand {
			if cv.(map[string]any)["rank"] != "" {
				visible = true
			}
		}
		if ps["id"] == "p0" && visible {
			t.Fatalf("p0's hand leaked to p1")
		}
		if ps["id"] == "p1" && !visible {
			t.Fatalf("p1 cannot see their own hand")
		}
	}
}

func TestStartWithShortBalanceReturns402(t *testing.T) {
	router, svc := newTestRouter(t)
	if err := svc.AdjustBalance(context.Background(), "p0", 100, "deposit"); err != nil {
		t.Fatalf("seed err: %v", err)
	}

	_, body := doJSON(t, router, http.MethodPost, "/api/truco/tables", map[string]any{
		"playerId": "p0", "name": "cash", "bet": 25,
	})
	tableID := body["id"].(string)
	doJSON(t, router, http.MethodPost, "/api/truco/tables/"+tableID+"/join", map[string]any{
		"playerId": "p1",
	})

	rec, body := doJSON(t, router, http.MethodPost, "/api/truco/tables/"+tableID+"/start", map[string]any{
		"playerId": "p0",
	})
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("short-balance start = %d %v", rec.Code, body)
	}
	if body["playerId"] != "p1" {
		t.Fatalf("short player = %v, want p1", body["playerId"])
	}
	// Nothing was debited.
	bal, _ := svc.GetBalance(context.Background(), "p0")
	if bal != 100 {
		t.Fatalf("funded player was debited: %d", bal)
	}
}

func TestTableNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	rec, _ := doJSON(t, router, http.MethodPost, "/api/truco/tables/nope/join", map[string]any{
		"playerId": "p1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("join missing table = %d", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodGet, "/api/truco/tables/nope/state", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("state of missing table = %d", rec.Code)
	}
}

func TestBalanceAndJournalEndpoints(t *testing.T) {
	router, svc := newTestRouter(t)
	_ = svc.AdjustBalance(context.Background(), "p0", 75, "deposit")

	rec, body := doJSON(t, router, http.MethodGet, "/api/truco/players/p0/balance", nil)
	if rec.Code != http.StatusOK || body["balance"].(float64) != 75 {
		t.Fatalf("balance = %d %v", rec.Code, body)
	}

	rec, body = doJSON(t, router, http.MethodGet, "/api/truco/players/p0/journal", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("journal = %d", rec.Code)
	}
	entries, ok := body["journal"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("journal entries = %v", body["journal"])
	}
}
