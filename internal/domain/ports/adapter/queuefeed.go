package adapter

import "context"

// CurrentNumberSource fetches the latest externally-announced queue number.
// Implementations return domain.ErrUpstreamUnavailable on any fetch, parse
// or missing-field failure; callers never see a stale or zero value dressed
// up as live data. The periodic watch engine keeps running on the next tick
// regardless.
type CurrentNumberSource interface {
	CurrentNumber(ctx context.Context) (int, error)
}
