package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	svcengine "github.com/hisui/usi-bridge/internal/service/engine"
	"github.com/hisui/usi-bridge/pkg/enginedto"
)

const startposSFEN = "lnsgkgsnl/1b5r1/ppppppppp/9/9/9/PPPPPPPPP/1R5B1/LNSGKGSNL b - 1"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := svcengine.NewService(svcengine.Config{UseMock: true}, nil)
	t.Cleanup(svc.Close)
	ts := httptest.NewServer(New(":0", svc, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestAPILifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Not ready before init.
	resp, err := http.Get(ts.URL + "/engine/ready")
	if err != nil {
		t.Fatalf("GET ready: %v", err)
	}
	if ready := decode[enginedto.ReadyResponse](t, resp); ready.Ready {
		t.Fatalf("ready before init")
	}

	// Init.
	resp = postJSON(t, ts.URL+"/engine/init", enginedto.InitRequest{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("init status = %d", resp.StatusCode)
	}
	init := decode[enginedto.InitResponse](t, resp)
	if init.SessionUUID == "" {
		t.Fatalf("init returned no session uuid")
	}

	// Ready now.
	resp, err = http.Get(ts.URL + "/engine/ready")
	if err != nil {
		t.Fatalf("GET ready: %v", err)
	}
	if ready := decode[enginedto.ReadyResponse](t, resp); !ready.Ready {
		t.Fatalf("not ready after init")
	}

	// Move.
	resp = postJSON(t, ts.URL+"/engine/move", enginedto.MoveRequest{SFEN: startposSFEN, TimeMs: 100})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move status = %d", resp.StatusCode)
	}
	if mv := decode[enginedto.MoveResponse](t, resp); mv.Move != "7g7f" {
		t.Fatalf("move = %q", mv.Move)
	}

	// Shutdown.
	resp = postJSON(t, ts.URL+"/engine/shutdown", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("shutdown status = %d", resp.StatusCode)
	}
	decode[enginedto.ShutdownResponse](t, resp)
}

func TestAPIMoveBeforeInit(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/engine/move", enginedto.MoveRequest{SFEN: startposSFEN})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	body := decode[enginedto.ErrorResponse](t, resp)
	if body.Code != enginedto.CodeNotRunning {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestAPIMoveMissingSFEN(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/engine/init", enginedto.InitRequest{})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/engine/move", enginedto.MoveRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decode[enginedto.ErrorResponse](t, resp)
	if body.Code != enginedto.CodeBadRequest {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestAPIDoubleInit(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/engine/init", enginedto.InitRequest{})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/engine/init", enginedto.InitRequest{})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	body := decode[enginedto.ErrorResponse](t, resp)
	if body.Code != enginedto.CodeAlreadyRunning {
		t.Fatalf("code = %q", body.Code)
	}
}

func TestAPIShutdownBeforeInit(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/engine/shutdown", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}
