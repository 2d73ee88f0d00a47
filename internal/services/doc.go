// Package services talks to the outside world: the token endpoint that hands out catalog credentials,
// and the Spotify catalog itself.
//
// # Token Providers
//
// A [TokenProvider] is asked for a fresh token before every search; nothing is cached.
//
//   - [EndpointTokenProvider] calls the crate token server (GET /api/token) through [APIService].
//   - [ClientCredentialsProvider] performs the client credentials exchange in-process with
//     [golang.org/x/oauth2/clientcredentials]. The token server uses it too.
//
// # Catalog
//
// [SpotifyCatalog] wraps the zmb3/spotify client. Each search builds a client around a static
// bearer token, issues one request capped at the configured limit and maps
// [spotify.FullTrack] values onto [models.Track].
//
// # Error Handling
//
// Failures are typed so the caller can tell them apart when composing status messages:
//   - [*AuthError] : token exchange failed, unwraps to [shared.ErrAuthFailed]
//   - [*SearchError] : catalog request failed, unwraps to [shared.ErrAPIRequest]
package services
