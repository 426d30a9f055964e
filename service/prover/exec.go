package prover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/pandodao/zk-wallet/core"
)

const maxDiagnostic = 4 << 10

type ExecConfig struct {
	Command string `valid:"required"`
	// Args go before the operation name.
	Args []string
	// Env is appended to the current environment.
	Env []string
}

// ExitError is a prover process that failed without a structured error.
type ExitError struct {
	Err    error
	Stderr string
}

func (e *ExitError) Error() string {
	return "prover process: " + e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func (e *ExitError) Diagnostic() string {
	return e.Stderr
}

// NewExec runs the prover as a subprocess per call: `<command> <args...> prove|address`
// with the request as JSON on stdin and the response as JSON on stdout.
func NewExec(cfg ExecConfig) core.ProverBackend {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &execBackend{cfg: cfg}
}

type execBackend struct {
	cfg ExecConfig
}

func (b *execBackend) Prove(ctx context.Context, req *core.ProofRequest) (*core.ProofResponse, error) {
	body, err := encodeProve(req)
	if err != nil {
		return nil, err
	}

	out, err := b.run(ctx, opProve, body)
	if err != nil {
		return nil, err
	}

	return out.proof()
}

func (b *execBackend) Address(ctx context.Context, secret *core.Secret) (core.Account, error) {
	body, err := encodeAddress(secret)
	if err != nil {
		return core.Account{}, err
	}

	out, err := b.run(ctx, opAddress, body)
	if err != nil {
		return core.Account{}, err
	}

	return out.account()
}

func (b *execBackend) run(ctx context.Context, op string, body []byte) (*response, error) {
	defer wipe(body)

	var stdout bytes.Buffer
	stderr := &limitedBuffer{max: maxDiagnostic}

	cmd := exec.CommandContext(ctx, b.cfg.Command, append(b.cfg.Args[:len(b.cfg.Args):len(b.cfg.Args)], op)...)
	cmd.Env = append(os.Environ(), b.cfg.Env...)
	cmd.Stdin = bytes.NewReader(body)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	// a structured error wins over the exit status
	if stdout.Len() > 0 {
		resp, err := decodeResponse(stdout.Bytes())
		var proverErr *core.ProverError
		if runErr == nil || errors.As(err, &proverErr) {
			return resp, err
		}
	}

	if runErr != nil {
		return nil, &ExitError{Err: runErr, Stderr: strings.TrimSpace(stderr.String())}
	}

	return nil, fmt.Errorf("prover process wrote no response")
}

// limitedBuffer keeps the first max bytes written to it.
type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if room := l.max - l.buf.Len(); room > 0 {
		l.buf.Write(p[:min(room, len(p))])
	}

	return len(p), nil
}

func (l *limitedBuffer) String() string {
	return l.buf.String()
}
