// Package server provides HTTP routing, middleware, sessions and handlers for the web app and the CLI login.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [BasicRouter] uses [http.ServeMux] method patterns; routes may also carry their own middleware,
// which is how [RateLimit] is attached to the art route only.
//
// # Sessions
//
// [SessionStore] maps the healthart_session cookie to an [Entry] holding an [auth.Session].
// Cookies are HttpOnly and SameSite=Lax; idle sessions expire and logout drops the session.
//
// # Web Application
//
// [App] registers:
//
//	GET  /          landing page
//	GET  /login     start the authorization-code flow
//	GET  /callback  complete it
//	GET  /art       fetch recovery, build prompt, generate and show the image
//	GET  /art.png   download the last image of this session
//	GET  /logout    clear the token (also POST)
//	GET  /healthz   liveness
//
// Errors are mapped to a status and a user-safe message; the underlying error is only logged.
// Authentication failures send the user back through /login.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves the callback for the CLI login: a temporary server on the configured
// address handles exactly one callback, sends the result through a channel and is shut down.
package server
