package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

func testAddr(b byte) bridge.Address {
	var a bridge.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func newBridgeTestServer(svc Service) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

type errorBody struct {
	Error  string `json:"error"`
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, rec.Body.Bytes()
}

func TestBridgeHTTP_InvalidJSON(t *testing.T) {
	handler := newBridgeTestServer(&mockService{})

	rec, body := doJSON(t, handler, http.MethodPost, "/v1/bridge/send", "{invalid")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var got errorBody
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Error != "invalid JSON" {
		t.Fatalf("error = %q, want invalid JSON", got.Error)
	}
}

func TestBridgeHTTP_ValidationRejectsZeroAmount(t *testing.T) {
	handler := newBridgeTestServer(&mockService{
		SendFunc: func(context.Context, *bridge.SendRequest) (*bridge.SendTx, error) {
			t.Fatal("service must not be called for an invalid payload")
			return nil, nil
		},
	})

	payload := `{"user":"` + testAddr(4).Hex() + `","amount":0,"to":"remote","to_chain":"evm.97"}`
	rec, _ := doJSON(t, handler, http.MethodPost, "/v1/bridge/send", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBridgeHTTP_SendHappyPath(t *testing.T) {
	want := &bridge.SendTx{
		Initiator: testAddr(4),
		Amount:    495_000,
		To:        bridge.ChainID("remote"),
		Nonce:     3,
		Timestamp: 1_700_000_000,
		ToChain:   bridge.ChainID("evm.97"),
		Block:     42,
	}
	var gotReq *bridge.SendRequest
	handler := newBridgeTestServer(&mockService{
		SendFunc: func(_ context.Context, req *bridge.SendRequest) (*bridge.SendTx, error) {
			gotReq = req
			return want, nil
		},
	})

	payload := `{"user":"` + testAddr(4).Hex() + `","amount":500000,"to":"remote","to_chain":"evm.97"}`
	rec, body := doJSON(t, handler, http.MethodPost, "/v1/bridge/send", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, body)
	}

	if gotReq == nil || gotReq.Amount != 500_000 || gotReq.User != testAddr(4) {
		t.Fatalf("service saw request %+v", gotReq)
	}
	if gotReq.ToChain != bridge.ChainID("evm.97") {
		t.Fatalf("to_chain = %v", gotReq.ToChain)
	}

	var tx bridge.SendTx
	if err := json.Unmarshal(body, &tx); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if tx != *want {
		t.Fatalf("response = %+v, want %+v", tx, *want)
	}
}

func TestBridgeHTTP_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"duplicate fulfillment", bridge.ErrDuplicateFulfillment, http.StatusConflict, "DUPLICATE_FULFILLMENT"},
		{"paused", bridge.ErrBridgePaused, http.StatusLocked, "BRIDGE_PAUSED"},
		{"chain missing", bridge.ErrChainNotFound, http.StatusNotFound, "CHAIN_NOT_FOUND"},
		{"amount too low", bridge.ErrAmountTooLow, http.StatusBadRequest, "AMOUNT_TOO_LOW"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newBridgeTestServer(&mockService{
				FulfillFunc: func(context.Context, *bridge.FulfillRequest) (*bridge.FulfillReceipt, error) {
					return nil, asServiceError(tc.err)
				},
			})

			payload := `{"user":"` + testAddr(4).Hex() + `","amount":100,"remote_nonce":7,"from_chain":"evm.97"}`
			rec, body := doJSON(t, handler, http.MethodPost, "/v1/bridge/fulfill", payload)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.wantStatus, body)
			}

			var got errorBody
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if got.Reason != tc.wantReason {
				t.Fatalf("reason = %q, want %q", got.Reason, tc.wantReason)
			}
		})
	}
}

func TestBridgeHTTP_TransfersPathParam(t *testing.T) {
	user := testAddr(4)
	handler := newBridgeTestServer(&mockService{
		TransfersFunc: func(_ context.Context, got bridge.Address) ([]*bridge.SendTx, error) {
			if got != user {
				t.Fatalf("user = %s, want %s", got, user)
			}
			return nil, nil
		},
	})

	rec, body := doJSON(t, handler, http.MethodGet, "/v1/bridge/transfers/"+user.Hex(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// empty result is an empty array, not null
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("body = %q, want []", body)
	}

	rec, _ = doJSON(t, handler, http.MethodGet, "/v1/bridge/transfers/not-an-address", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad address, got %d", rec.Code)
	}
}

func TestBridgeHTTP_InitializeReturnsCustody(t *testing.T) {
	custody := testAddr(0xCC)
	handler := newBridgeTestServer(&mockService{
		InitializeFunc: func(_ context.Context, req *bridge.InitializeRequest) (bridge.Address, error) {
			if req.FeeSend != 100 || req.LimitSend != 1_000_000 {
				t.Fatalf("request = %+v", req)
			}
			return custody, nil
		},
	})

	payload := `{"fee_send":100,"fee_fulfill":100,"limit_send":1000000,"fee_recipient":"` + testAddr(3).Hex() + `"}`
	rec, body := doJSON(t, handler, http.MethodPost, "/v1/bridge/", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, body)
	}

	var got map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got["custody"] != custody.Hex() {
		t.Fatalf("custody = %q, want %q", got["custody"], custody.Hex())
	}
}

func TestBridgeHTTP_CustodyBalance(t *testing.T) {
	handler := newBridgeTestServer(&mockService{
		CustodyBalanceFunc: func(context.Context) (uint64, error) {
			return 123_456, nil
		},
	})

	rec, body := doJSON(t, handler, http.MethodGet, "/v1/bridge/custody", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got map[string]uint64
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got["balance"] != 123_456 {
		t.Fatalf("balance = %d, want 123456", got["balance"])
	}
}

func TestBridgeHTTP_SetParamsNoContent(t *testing.T) {
	called := false
	handler := newBridgeTestServer(&mockService{
		SetParamsFunc: func(_ context.Context, req *bridge.SetParamsRequest) error {
			called = true
			return nil
		},
	})

	payload := `{"fee_send":0,"fee_fulfill":0,"limit_send":10,"fee_recipient":"` + testAddr(3).Hex() + `","paused":true}`
	rec, _ := doJSON(t, handler, http.MethodPut, "/v1/bridge/params", payload)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !called {
		t.Fatal("service was not called")
	}
}
