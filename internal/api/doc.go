// Package api implements the HTTP gateway client for the MetôCast backend.
//
// The [Client] exposes one method per backend operation. Authorized requests
// carry the stored bearer token, injected by an [golang.org/x/oauth2.Transport]
// whose token source reads the session store on every request. The client
// never caches credentials itself.
//
// Any authorized request answered with 401 clears the stored session and
// reports [shared.ErrSessionExpired], so a revoked token cannot wedge the
// application into a permanently broken session.
package api
