package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/solana-bridge-middleware/pkg/app/errors"
	apphttp "github.com/chainsafe/solana-bridge-middleware/pkg/app/http"
	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
)

const maxBodySize = 1 << 20 // 1MB

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service  Service
	validate *validator.Validate
	logger   *zap.Logger
}

// RegisterRoutes registers bridge endpoints on the given chi router.
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}

	r.Route("/v1/bridge", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.initialize))
		r.Get("/params", apphttp.HandleError(h.params))
		r.Put("/params", apphttp.HandleError(h.setParams))
		r.Put("/chains", apphttp.HandleError(h.setChainData))
		r.Get("/chains/{chain}", apphttp.HandleError(h.chainData))
		r.Post("/send", apphttp.HandleError(h.send))
		r.Post("/fulfill", apphttp.HandleError(h.fulfill))
		r.Post("/withdraw", apphttp.HandleError(h.withdraw))
		r.Get("/custody", apphttp.HandleError(h.custodyBalance))
		r.Get("/transfers/{user}", apphttp.HandleError(h.transfers))
	})
}

type paramsPayload struct {
	FeeSend      uint16         `json:"fee_send" validate:"lt=10000"`
	FeeFulfill   uint16         `json:"fee_fulfill" validate:"lt=10000"`
	LimitSend    uint64         `json:"limit_send"`
	FeeRecipient bridge.Address `json:"fee_recipient" validate:"required"`
	Paused       bool           `json:"paused"`
}

type chainDataPayload struct {
	Chain            bridge.Bytes32 `json:"chain" validate:"required"`
	Enabled          bool           `json:"enabled"`
	ExchangeRateFrom uint64         `json:"exchange_rate_from" validate:"required,gt=0"`
}

type sendPayload struct {
	User    bridge.Address `json:"user" validate:"required"`
	Amount  uint64         `json:"amount" validate:"required,gt=0"`
	To      bridge.Bytes32 `json:"to" validate:"required"`
	ToChain bridge.Bytes32 `json:"to_chain" validate:"required"`
}

type fulfillPayload struct {
	User        bridge.Address `json:"user" validate:"required"`
	Amount      uint64         `json:"amount" validate:"required,gt=0"`
	RemoteNonce uint64         `json:"remote_nonce"`
	FromChain   bridge.Bytes32 `json:"from_chain" validate:"required"`
}

type withdrawPayload struct {
	To bridge.Address `json:"to" validate:"required"`
}

func (h *HTTP) initialize(w http.ResponseWriter, r *http.Request) error {
	var payload paramsPayload
	if err := h.decode(r, &payload); err != nil {
		return err
	}

	custody, err := h.service.Initialize(r.Context(), &bridge.InitializeRequest{
		FeeSend:      payload.FeeSend,
		FeeFulfill:   payload.FeeFulfill,
		LimitSend:    payload.LimitSend,
		FeeRecipient: payload.FeeRecipient,
		Paused:       payload.Paused,
	})
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"custody": custody})
	return nil
}

func (h *HTTP) setParams(w http.ResponseWriter, r *http.Request) error {
	var payload paramsPayload
	if err := h.decode(r, &payload); err != nil {
		return err
	}

	if err := h.service.SetParams(r.Context(), &bridge.SetParamsRequest{
		FeeSend:      payload.FeeSend,
		FeeFulfill:   payload.FeeFulfill,
		LimitSend:    payload.LimitSend,
		FeeRecipient: payload.FeeRecipient,
		Paused:       payload.Paused,
	}); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *HTTP) setChainData(w http.ResponseWriter, r *http.Request) error {
	var payload chainDataPayload
	if err := h.decode(r, &payload); err != nil {
		return err
	}

	if err := h.service.SetChainData(r.Context(), &bridge.SetChainDataRequest{
		Chain:            payload.Chain,
		Enabled:          payload.Enabled,
		ExchangeRateFrom: payload.ExchangeRateFrom,
	}); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *HTTP) send(w http.ResponseWriter, r *http.Request) error {
	var payload sendPayload
	if err := h.decode(r, &payload); err != nil {
		return err
	}

	tx, err := h.service.Send(r.Context(), &bridge.SendRequest{
		User:    payload.User,
		Amount:  payload.Amount,
		To:      payload.To,
		ToChain: payload.ToChain,
	})
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusCreated, tx)
	return nil
}

func (h *HTTP) fulfill(w http.ResponseWriter, r *http.Request) error {
	var payload fulfillPayload
	if err := h.decode(r, &payload); err != nil {
		return err
	}

	receipt, err := h.service.Fulfill(r.Context(), &bridge.FulfillRequest{
		User:        payload.User,
		Amount:      payload.Amount,
		RemoteNonce: payload.RemoteNonce,
		FromChain:   payload.FromChain,
	})
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, receipt)
	return nil
}

func (h *HTTP) withdraw(w http.ResponseWriter, r *http.Request) error {
	var payload withdrawPayload
	if err := h.decode(r, &payload); err != nil {
		return err
	}

	amount, err := h.service.Withdraw(r.Context(), &bridge.WithdrawRequest{To: payload.To})
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, map[string]uint64{"amount": amount})
	return nil
}

func (h *HTTP) params(w http.ResponseWriter, r *http.Request) error {
	params, err := h.service.Params(r.Context())
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, params)
	return nil
}

func (h *HTTP) chainData(w http.ResponseWriter, r *http.Request) error {
	var chain bridge.Bytes32
	if err := chain.UnmarshalText([]byte(chi.URLParam(r, "chain"))); err != nil {
		return apperrors.BadRequestError(err, "invalid chain identifier")
	}

	cd, err := h.service.ChainData(r.Context(), chain)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, cd)
	return nil
}

func (h *HTTP) custodyBalance(w http.ResponseWriter, r *http.Request) error {
	balance, err := h.service.CustodyBalance(r.Context())
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
	return nil
}

func (h *HTTP) transfers(w http.ResponseWriter, r *http.Request) error {
	var user bridge.Address
	if err := user.UnmarshalText([]byte(chi.URLParam(r, "user"))); err != nil {
		return apperrors.BadRequestError(err, "invalid user address")
	}

	txs, err := h.service.Transfers(r.Context(), user)
	if err != nil {
		return err
	}
	if txs == nil {
		txs = []*bridge.SendTx{}
	}

	h.writeJSON(w, http.StatusOK, txs)
	return nil
}

func (h *HTTP) decode(r *http.Request, payload any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	if err := json.Unmarshal(body, payload); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	if err := h.validate.Struct(payload); err != nil {
		return apperrors.BadRequestError(err, "invalid request payload")
	}
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
