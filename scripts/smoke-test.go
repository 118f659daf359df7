//go:build ignore

// smoke-test.go - End-to-end smoke test for the bridge HTTP API
//
// Drives a running bridge-server through a full outbound/inbound cycle:
// 1. Initialize the bridge instance (tolerates an already-initialized one)
// 2. Register and enable a remote chain
// 3. Send tokens out and list the user's transfers
// 4. Fulfill an inbound transfer and verify the replay guard rejects a rerun
//
// Usage:
//   go run scripts/smoke-test.go -config config.smoke.yaml [-token jwt-token.txt]
//
// Flags:
//   -config  Path to the smoke test config (YAML)
//   -token   Optional path to a JWT used as the Bearer token

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Colors for output
const (
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
	colorReset  = "\033[0m"
)

// SmokeConfig holds test-specific configuration
type SmokeConfig struct {
	Services struct {
		BridgeURL string `yaml:"bridge_url"`
	} `yaml:"services"`

	Accounts struct {
		User         string `yaml:"user"`
		FeeRecipient string `yaml:"fee_recipient"`
		RemoteTo     string `yaml:"remote_to"`
	} `yaml:"accounts"`

	Chain struct {
		ID               string `yaml:"id"`
		ExchangeRateFrom uint64 `yaml:"exchange_rate_from"`
	} `yaml:"chain"`

	Params struct {
		FeeSend    uint16 `yaml:"fee_send"`
		FeeFulfill uint16 `yaml:"fee_fulfill"`
		LimitSend  uint64 `yaml:"limit_send"`
	} `yaml:"params"`

	Amounts struct {
		Send        uint64 `yaml:"send"`
		Fulfill     uint64 `yaml:"fulfill"`
		RemoteNonce uint64 `yaml:"remote_nonce"`
	} `yaml:"amounts"`

	Timeouts struct {
		Startup string `yaml:"startup"`
	} `yaml:"timeouts"`
}

var (
	configPath = flag.String("config", "config.smoke.yaml", "Path to smoke test config")
	tokenPath  = flag.String("token", "", "Path to a JWT used as the Bearer token")
)

var bearerToken string

func main() {
	flag.Parse()

	printHeader("Bridge API Smoke Test")

	printStep("Loading configuration...")
	cfg, err := loadConfig(*configPath)
	if err != nil {
		printError("Failed to load config: %v", err)
		os.Exit(1)
	}
	printSuccess("Configuration loaded")

	if *tokenPath != "" {
		raw, err := os.ReadFile(*tokenPath)
		if err != nil {
			printError("Failed to read token: %v", err)
			os.Exit(1)
		}
		bearerToken = strings.TrimSpace(string(raw))
		printInfo("Using Bearer token from %s", *tokenPath)
	}

	base := strings.TrimRight(cfg.Services.BridgeURL, "/")

	printStep("Waiting for bridge-server at %s...", base)
	if err := waitForHealth(base, cfg.startupTimeout()); err != nil {
		printError("Service not healthy: %v", err)
		os.Exit(1)
	}
	printSuccess("Service is healthy")

	printStep("Initializing bridge instance...")
	status, body, err := call(http.MethodPost, base+"/v1/bridge/", map[string]any{
		"fee_send":      cfg.Params.FeeSend,
		"fee_fulfill":   cfg.Params.FeeFulfill,
		"limit_send":    cfg.Params.LimitSend,
		"fee_recipient": cfg.Accounts.FeeRecipient,
	})
	switch {
	case err != nil:
		printError("Initialize failed: %v", err)
		os.Exit(1)
	case status == http.StatusCreated:
		printSuccess("Instance initialized: %s", body)
	case status == http.StatusConflict:
		printInfo("Instance already initialized, continuing")
	default:
		printError("Initialize returned %d: %s", status, body)
		os.Exit(1)
	}

	printStep("Registering chain %s...", cfg.Chain.ID)
	status, body, err = call(http.MethodPut, base+"/v1/bridge/chains", map[string]any{
		"chain":              cfg.Chain.ID,
		"enabled":            true,
		"exchange_rate_from": cfg.Chain.ExchangeRateFrom,
	})
	if err != nil || status != http.StatusNoContent {
		printError("SetChainData returned %d: %s (%v)", status, body, err)
		os.Exit(1)
	}
	printSuccess("Chain registered")

	printStep("Sending %d tokens to %s...", cfg.Amounts.Send, cfg.Chain.ID)
	status, body, err = call(http.MethodPost, base+"/v1/bridge/send", map[string]any{
		"user":     cfg.Accounts.User,
		"amount":   cfg.Amounts.Send,
		"to":       cfg.Accounts.RemoteTo,
		"to_chain": cfg.Chain.ID,
	})
	if err != nil || status != http.StatusCreated {
		printError("Send returned %d: %s (%v)", status, body, err)
		os.Exit(1)
	}
	var sendTx struct {
		Amount uint64 `json:"amount"`
		Nonce  uint64 `json:"nonce"`
	}
	if err := json.Unmarshal(body, &sendTx); err != nil {
		printError("Failed to decode send receipt: %v", err)
		os.Exit(1)
	}
	printSuccess("Sent: amount=%d nonce=%d", sendTx.Amount, sendTx.Nonce)

	printStep("Listing transfers for %s...", cfg.Accounts.User)
	status, body, err = call(http.MethodGet, base+"/v1/bridge/transfers/"+cfg.Accounts.User, nil)
	if err != nil || status != http.StatusOK {
		printError("Transfers returned %d: %s (%v)", status, body, err)
		os.Exit(1)
	}
	var transfers []json.RawMessage
	if err := json.Unmarshal(body, &transfers); err != nil {
		printError("Failed to decode transfers: %v", err)
		os.Exit(1)
	}
	printSuccess("User has %d transfer(s)", len(transfers))

	printStep("Fulfilling inbound transfer (nonce %d)...", cfg.Amounts.RemoteNonce)
	fulfill := map[string]any{
		"user":         cfg.Accounts.User,
		"amount":       cfg.Amounts.Fulfill,
		"remote_nonce": cfg.Amounts.RemoteNonce,
		"from_chain":   cfg.Chain.ID,
	}
	status, body, err = call(http.MethodPost, base+"/v1/bridge/fulfill", fulfill)
	if err != nil || status != http.StatusOK {
		printError("Fulfill returned %d: %s (%v)", status, body, err)
		os.Exit(1)
	}
	printSuccess("Fulfilled: %s", body)

	printStep("Replaying the same fulfillment (must be rejected)...")
	status, body, err = call(http.MethodPost, base+"/v1/bridge/fulfill", fulfill)
	if err != nil {
		printError("Replay request failed: %v", err)
		os.Exit(1)
	}
	if status != http.StatusConflict {
		printError("Replay returned %d, expected %d: %s", status, http.StatusConflict, body)
		os.Exit(1)
	}
	printSuccess("Replay rejected: %s", body)

	printStep("Reading custody balance...")
	status, body, err = call(http.MethodGet, base+"/v1/bridge/custody", nil)
	if err != nil || status != http.StatusOK {
		printError("Custody returned %d: %s (%v)", status, body, err)
		os.Exit(1)
	}
	printSuccess("Custody: %s", body)

	printHeader("Smoke test passed")
}

func loadConfig(path string) (*SmokeConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg SmokeConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if cfg.Services.BridgeURL == "" {
		cfg.Services.BridgeURL = "http://localhost:8080"
	}
	return &cfg, nil
}

func (c *SmokeConfig) startupTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeouts.Startup)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func waitForHealth(base string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("no healthy response within %s", timeout)
}

func call(method, url string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, bytes.TrimSpace(raw), nil
}

func printHeader(format string, args ...any) {
	fmt.Printf("\n%s=== %s ===%s\n", colorBlue, fmt.Sprintf(format, args...), colorReset)
}

func printStep(format string, args ...any) {
	fmt.Printf("%s→ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func printSuccess(format string, args ...any) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}
