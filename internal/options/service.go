// Package options serves the externally-configured enumeration lists the
// marketplace UI renders alongside verification, such as delivery and
// payment taxonomies. The lists come from configuration and are immutable
// at runtime; this is deliberately not part of the verification state
// machine.
package options

import (
	"context"
	"sort"

	dErrors "agrilink/pkg/domain-errors"
)

const (
	ListDelivery = "delivery"
	ListPayment  = "payment"
)

type Service struct {
	lists map[string][]string
}

func NewService(delivery, payment []string) *Service {
	return &Service{lists: map[string][]string{
		ListDelivery: append([]string{}, delivery...),
		ListPayment:  append([]string{}, payment...),
	}}
}

// List returns one named enumeration.
func (s *Service) List(_ context.Context, name string) ([]string, error) {
	values, ok := s.lists[name]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown option list: "+name)
	}
	return append([]string{}, values...), nil
}

// Names returns the available list names in stable order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.lists))
	for name := range s.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
