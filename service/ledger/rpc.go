package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pandodao/zk-wallet/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const jsonrpcVersion = "2.0"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	Result  jsoniter.RawMessage `json:"result"`
	Error   *rpcError           `json:"error"`
}

type rpcError struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data,omitempty"`
}

// call posts one JSON-RPC request and decodes the result into out. Only
// transport failures are retried, by resty. A JSON-RPC error comes back as
// *rpcError so callers can decide what it means for their method.
func (s *service) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: jsonrpcVersion,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode %s request failed: %w", method, err)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(s.cfg.Endpoint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return fmt.Errorf("%s: %w", method, ctxErr)
		}

		return &core.NetworkError{Op: method, Err: err}
	}

	var r rpcResponse
	decodeErr := json.Unmarshal(resp.Body(), &r)

	switch {
	case decodeErr == nil && r.Error != nil:
		return r.Error
	case resp.StatusCode() != http.StatusOK:
		return &core.LedgerError{Op: method, Status: resp.StatusCode(), Message: truncate(resp.String(), 256)}
	case decodeErr != nil:
		return &core.LedgerError{Op: method, Message: "malformed response: " + decodeErr.Error()}
	case len(r.Result) == 0 || string(r.Result) == "null":
		return &core.LedgerError{Op: method, Message: "no result in response"}
	}

	if err := json.Unmarshal(r.Result, out); err != nil {
		return &core.LedgerError{Op: method, Message: "malformed result: " + err.Error()}
	}

	return nil
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *rpcError) ledgerError(method string) *core.LedgerError {
	return &core.LedgerError{Op: method, Code: e.Code, Message: e.Message}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
