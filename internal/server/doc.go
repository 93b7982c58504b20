// Package server provides HTTP routing, middleware, and OAuth handling for the loopback authorization listener.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Routes
//
//   - "/" : [LoginHandler] redirects to the authorization page, or to "/authenticated" when the cache holds a usable token
//   - callback path : [OAuthHandler] validates state, exchanges the code and reports the token
//   - "/authenticated" : [CachedHandler] completes the flow from the cache, or redirects to "/"
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks. The result channel receives exactly one
// [OAuthResult] and is then closed; the caller shuts the listener down after reading it.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
