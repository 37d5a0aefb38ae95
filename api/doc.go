// Package api implements the HTTP control surface (C7): map listing,
// join, token-authenticated state/players/action, the debug-mode tick
// endpoint, the leaderboard page, and a Prometheus scrape endpoint.
//
// Every handler validates method, Content-Type and body shape before
// touching engine.World; validation failures map to the wire error
// kinds in internal/apierr. Responses are JSON with Cache-Control:
// no-cache, and positions/speeds are rendered with one-decimal fixed
// precision via Fixed1.
package api
