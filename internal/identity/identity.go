package identity

import "context"

// Provider resolves the authenticated user bound to this client, if any.
// Authentication itself happens outside the core; sessions only consume
// the already-resolved identity.
type Provider interface {
	CurrentUser(ctx context.Context) (string, bool)
}

// Static binds a fixed user identifier, typically the session cookie the
// transport issued on connect.
type Static string

func (that Static) CurrentUser(_ context.Context) (string, bool) {
	if that == "" {
		return "", false
	}

	return string(that), true
}

// Anonymous is a provider with no user bound; every operation requiring
// identity fails against it.
func Anonymous() Provider {
	return Static("")
}
