// Package auth establishes an authorized streaming API session.
//
// # State Machine
//
// A [Flow] moves through [Unauthenticated] → [AwaitingCallback] → [Authenticated]:
//
//  1. The [TokenCache] is loaded. A token that is unexpired (with a one minute leeway) and carries every
//     scope in [RequiredScopes] completes the flow immediately, without a listener. An expired token with
//     a refresh token and every scope is refreshed instead; the new token is saved and completes the flow.
//     A failed refresh falls through to step 2.
//  2. Otherwise a random state value and the authorization URL are generated, a loopback listener is bound
//     at the redirect URI's host and port, and the URL is printed (and opened in a browser when configured).
//  3. The first callback result ends the wait. A successful exchange is written back to the cache and
//     the listener is shut down.
//
// Failures map onto the shared sentinels: [shared.ErrAuthFailed] for a bad state, missing code or failed
// exchange, [shared.ErrServerStartup] when the listener cannot bind, and [shared.ErrTimeout] when no
// callback arrives in time.
//
// # Token Cache
//
// The cache file uses the Spotipy layout (access_token, token_type, expires_in, scope, expires_at,
// refresh_token) and is written with owner-only permissions. [NewClient] builds the session's HTTP client;
// each token it refreshes during the session is saved to the same cache.
package auth
