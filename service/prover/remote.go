package prover

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	"github.com/pandodao/zk-wallet/core"
)

type RemoteConfig struct {
	Endpoint string `valid:"requrl,required"`
}

// NewRemote talks to a prover over HTTP, POSTing to <endpoint>/prove and
// <endpoint>/address. Requests are never retried.
func NewRemote(cfg RemoteConfig) core.ProverBackend {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	client := resty.New()
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal

	return &remoteBackend{
		client:   client,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
	}
}

type remoteBackend struct {
	client   *resty.Client
	endpoint string
}

func (b *remoteBackend) Prove(ctx context.Context, req *core.ProofRequest) (*core.ProofResponse, error) {
	body, err := encodeProve(req)
	if err != nil {
		return nil, err
	}

	out, err := b.post(ctx, opProve, body)
	if err != nil {
		return nil, err
	}

	return out.proof()
}

func (b *remoteBackend) Address(ctx context.Context, secret *core.Secret) (core.Account, error) {
	body, err := encodeAddress(secret)
	if err != nil {
		return core.Account{}, err
	}

	out, err := b.post(ctx, opAddress, body)
	if err != nil {
		return core.Account{}, err
	}

	return out.account()
}

func (b *remoteBackend) post(ctx context.Context, op string, body []byte) (*response, error) {
	defer wipe(body)

	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(b.endpoint + "/" + op)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, fmt.Errorf("prover %s request failed: %w", op, err)
	}

	out, err := decodeResponse(resp.Body())
	if resp.IsError() {
		var proverErr *core.ProverError
		if errors.As(err, &proverErr) {
			return nil, err
		}

		return nil, fmt.Errorf("prover %s: http %d: %s", op, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	return out, err
}
