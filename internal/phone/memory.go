package phone

import (
	"context"
	"sync"

	dErrors "agrilink/pkg/domain-errors"
)

// InMemoryGateway issues a fixed code per number. Used by tests and local
// development when no SMS gateway is configured.
type InMemoryGateway struct {
	mu    sync.Mutex
	codes map[string]string
}

const devCode = "000000"

func NewInMemoryGateway() *InMemoryGateway {
	return &InMemoryGateway{codes: make(map[string]string)}
}

func (g *InMemoryGateway) SendCode(_ context.Context, phoneNumber string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.codes[phoneNumber] = devCode
	return nil
}

func (g *InMemoryGateway) VerifyCode(_ context.Context, phoneNumber, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	expected, ok := g.codes[phoneNumber]
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "no code was sent to this number")
	}
	if code != expected {
		return dErrors.New(dErrors.CodeValidation, "confirmation code does not match")
	}
	delete(g.codes, phoneNumber)
	return nil
}
