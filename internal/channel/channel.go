package channel

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/heraldhq/herald-api/internal/models"
)

// ErrUnbound is returned when an alert's delivery type has no channel bound.
// The dispatcher treats this as "skip the whole audience and warn", not as a
// per-recipient failure.
var ErrUnbound = errors.New("no channel bound for delivery type")

// Channel delivers one alert to one recipient. Implementations must be safe
// for concurrent use; the dispatcher fans out across recipients.
type Channel interface {
	Send(ctx context.Context, user models.User, alert models.Alert) error
}

// Registry is the capability table from delivery type to bound channel.
// Bindings are fixed at startup; Resolve is lock-free.
type Registry struct {
	channels map[models.DeliveryType]Channel
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[models.DeliveryType]Channel)}
}

func (r *Registry) Bind(t models.DeliveryType, ch Channel) {
	r.channels[t] = ch
}

func (r *Registry) Resolve(t models.DeliveryType) (Channel, error) {
	ch, ok := r.channels[t]
	if !ok {
		return nil, errors.Wrapf(ErrUnbound, "%s", t)
	}
	return ch, nil
}

// Bound lists the bound delivery types in stable order.
func (r *Registry) Bound() []models.DeliveryType {
	types := make([]models.DeliveryType, 0, len(r.channels))
	for t := range r.channels {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
