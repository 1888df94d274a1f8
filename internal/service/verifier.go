package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/Skotchmaster/product_dashboard/pkg/hash"
	"github.com/Skotchmaster/product_dashboard/pkg/logging"
)

// CodeVerifier decides whether a one-time code is right. Issue returns the
// value the session has to carry so that Verify can check the code later.
type CodeVerifier interface {
	Issue(ctx context.Context, identifier string) (string, error)
	Verify(ctx context.Context, issued, code string) (bool, error)
}

// MockVerifier accepts every code.
type MockVerifier struct{}

func (MockVerifier) Issue(context.Context, string) (string, error)        { return "", nil }
func (MockVerifier) Verify(context.Context, string, string) (bool, error) { return true, nil }

const CodeLength = 6

// IssuedCodeVerifier generates a numeric code per login and prints it to the
// log in place of a delivery channel. Only its bcrypt hash leaves the
// verifier.
type IssuedCodeVerifier struct {
	Generate func() (string, error)
}

func (v IssuedCodeVerifier) Issue(ctx context.Context, identifier string) (string, error) {
	gen := v.Generate
	if gen == nil {
		gen = RandomCode
	}
	code, err := gen()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	codeHash, err := hash.HashSecret(code)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	logging.FromContext(ctx).Info("otp_issued", "identifier", identifier, "code", code)
	return codeHash, nil
}

func (IssuedCodeVerifier) Verify(_ context.Context, issued, code string) (bool, error) {
	return hash.CheckSecret(issued, code), nil
}

func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
