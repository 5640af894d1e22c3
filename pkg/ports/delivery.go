package ports

import (
	"context"

	"github.com/aretw0/leadchat/pkg/domain"
)

// LeadDeliverer hands a captured lead to the external relay.
// A nil error means the relay acknowledged the lead (2xx).
// Implementations must honor ctx cancellation.
type LeadDeliverer interface {
	Deliver(ctx context.Context, lead *domain.LeadRecord) error
}

// DelivererFunc adapts a function to LeadDeliverer.
type DelivererFunc func(ctx context.Context, lead *domain.LeadRecord) error

// Deliver calls f(ctx, lead).
func (f DelivererFunc) Deliver(ctx context.Context, lead *domain.LeadRecord) error {
	return f(ctx, lead)
}

// Chain delivers to each deliverer in order and stops at the first error.
// Nil entries are skipped; an empty chain returns nil.
func Chain(deliverers ...LeadDeliverer) LeadDeliverer {
	var list []LeadDeliverer
	for _, d := range deliverers {
		if d != nil {
			list = append(list, d)
		}
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	}
	return DelivererFunc(func(ctx context.Context, lead *domain.LeadRecord) error {
		for _, d := range list {
			if err := d.Deliver(ctx, lead); err != nil {
				return err
			}
		}
		return nil
	})
}
