// Package gateway is the REST client for the merchant backend. It implements
// the transaction and history gateways consumed by the session state machines.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Kaosethi/MerchantApp-sub000/shared/cqrs"
	"github.com/Kaosethi/MerchantApp-sub000/shared/logging"
	"github.com/Kaosethi/MerchantApp-sub000/shared/models"
	"go.uber.org/zap"
)

const (
	processPath      = "/merchant-app/transactions/process"
	transactionsPath = "/merchant-app/transactions"

	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logging.OrNop(logger),
	}
}

type processRequest struct {
	BeneficiaryID string `json:"beneficiaryId"`
	Pin           string `json:"pin"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Process submits one PIN-authorized transfer.
func (c *Client) Process(ctx context.Context, cmd cqrs.ProcessTransactionCommand) (*models.ProcessResult, error) {
	body, err := json.Marshal(processRequest{
		BeneficiaryID: cmd.BeneficiaryID,
		Pin:           cmd.Pin,
		Amount:        cmd.Amount,
		Description:   cmd.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal process request: %w", err)
	}

	var result models.ProcessResult
	if err := c.do(ctx, "process transaction", http.MethodPost, c.baseURL+processPath, body, &result); err != nil {
		return nil, err
	}
	if result.TransactionID == "" {
		return nil, &ProtocolError{Op: "process transaction", Err: fmt.Errorf("transactionId missing")}
	}
	return &result, nil
}

// FetchPage fetches one page of the merchant's transaction history.
func (c *Client) FetchPage(ctx context.Context, q cqrs.FetchHistoryPageQuery) (*models.HistoryPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.Status != "" {
		params.Set("status", q.Status)
	}

	var page models.HistoryPage
	if err := c.do(ctx, "fetch history", http.MethodGet, c.baseURL+transactionsPath+"?"+params.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend unreachable", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("backend call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Reason: readReason(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProtocolError{Op: op, Err: err}
	}
	return nil
}

func readReason(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		if eb.Error != "" {
			return eb.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
