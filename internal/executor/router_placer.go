package executor

import (
	"context"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/errkind"
)

// RouterPlacer satisfies recovery.OrderPlacer by dispatching a
// corrective order to whichever venue it names, reusing the same
// per-venue Clients map the Executor itself dispatches against — a
// recovery plan's order always targets the venue whose leg already
// filled, so a single multi-venue placer is enough.
type RouterPlacer struct {
	Clients map[domain.Venue]Client
}

// PlaceOrder routes req to the client registered for req.Venue.
func (r RouterPlacer) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	client, ok := r.Clients[req.Venue]
	if !ok {
		return domain.OrderResult{}, errkind.InvalidRequest("no client registered for venue "+req.Venue.String(), nil)
	}
	return client.PlaceOrder(ctx, req)
}
