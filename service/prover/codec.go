package prover

import (
	"encoding/hex"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pandodao/zk-wallet/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	opProve   = "prove"
	opAddress = "address"
)

type proveRequest struct {
	Circuit core.Circuit `json:"circuit"`
	Tx      string       `json:"tx"`
	Secret  string       `json:"secret,omitempty"`
}

type addressRequest struct {
	Secret string `json:"secret"`
}

type response struct {
	Proof   string            `json:"proof,omitempty"`
	VK      string            `json:"vk,omitempty"`
	Address string            `json:"address,omitempty"`
	Error   *core.ProverError `json:"error,omitempty"`
}

func encodeProve(req *core.ProofRequest) ([]byte, error) {
	r := proveRequest{
		Circuit: req.Circuit,
		Tx:      hex.EncodeToString(req.Transaction),
	}

	if req.Secret != nil {
		r.Secret = req.Secret.Reveal()
	}

	return json.Marshal(r)
}

func encodeAddress(secret *core.Secret) ([]byte, error) {
	return json.Marshal(addressRequest{Secret: secret.Reveal()})
}

func decodeResponse(b []byte) (*response, error) {
	var r response
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode prover response failed: %w", err)
	}

	if r.Error != nil {
		return nil, r.Error
	}

	return &r, nil
}

func (r *response) proof() (*core.ProofResponse, error) {
	proof, err := hex.DecodeString(r.Proof)
	if err != nil {
		return nil, fmt.Errorf("decode proof failed: %w", err)
	}

	vk, err := hex.DecodeString(r.VK)
	if err != nil {
		return nil, fmt.Errorf("decode vk failed: %w", err)
	}

	resp := &core.ProofResponse{Proof: proof, VerifyingKey: vk}
	if r.Address != "" {
		if resp.Address, err = core.ParseAccount(r.Address); err != nil {
			return nil, fmt.Errorf("decode address failed: %w", err)
		}
	}

	return resp, nil
}

func (r *response) account() (core.Account, error) {
	account, err := core.ParseAccount(r.Address)
	if err != nil {
		return core.Account{}, fmt.Errorf("decode address failed: %w", err)
	}

	return account, nil
}

// wipe zeroes a request body that carried a secret.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
