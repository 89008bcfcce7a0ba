// Package auth runs the OAuth2 authorization-code grant against the metrics provider for one browser session.
//
// # Sessions
//
// A [Session] holds the state tokens of outstanding login attempts and at most one [TokenRecord].
// Sessions are passed explicitly to every [Manager] operation; nothing is kept in package-level state.
//
// # Flow
//
//  1. [Manager.BeginLogin] issues a random state, records it on the session and returns the authorization URL.
//  2. The provider redirects back with code and state.
//  3. [Manager.HandleCallback] consumes the state (single use, whatever the outcome) and exchanges the code.
//  4. [Manager.CurrentToken] / [Manager.FreshToken] expose the token; [Manager.Logout] clears and optionally revokes it.
//
// An unknown or replayed state yields [shared.ErrInvalidState] and clears any token already held by the session.
package auth
