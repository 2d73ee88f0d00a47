package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// SpotifyTokenURL is the accounts service endpoint for the client credentials grant.
const SpotifyTokenURL = "https://accounts.spotify.com/api/token"

// TokenResponse is the body of the token endpoint. A failed exchange sets Error.
type TokenResponse struct {
	AccessToken string `json:"accessToken,omitempty"`
	Error       string `json:"error,omitempty"`
}

// EndpointTokenProvider fetches tokens from the crate token server.
type EndpointTokenProvider struct {
	api  *APIService
	path string
}

// NewEndpointTokenProvider builds a provider for a full endpoint URL such as http://127.0.0.1:3000/api/token.
func NewEndpointTokenProvider(endpoint string, client *http.Client) *EndpointTokenProvider {
	base, path := endpoint, "/api/token"
	if i := strings.Index(endpoint, "://"); i >= 0 {
		if j := strings.Index(endpoint[i+3:], "/"); j >= 0 {
			base, path = endpoint[:i+3+j], endpoint[i+3+j:]
		}
	}
	return &EndpointTokenProvider{api: NewAPIService(base, client), path: path}
}

// FetchAccessToken performs GET on the endpoint. A 200 with a non-empty accessToken and no error succeeds;
// anything else is an [*AuthError] carrying the server's message.
func (p *EndpointTokenProvider) FetchAccessToken(ctx context.Context) (string, error) {
	resp, err := p.api.Get(ctx, p.path)
	if err != nil {
		return "", &AuthError{Message: err.Error(), Err: err}
	}

	var body TokenResponse
	decodeErr := resp.Decode(&body)

	switch {
	case !resp.OK():
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && body.Error != "" {
			msg = body.Error
		}
		return "", &AuthError{StatusCode: resp.StatusCode, Message: msg}
	case decodeErr != nil:
		return "", &AuthError{StatusCode: resp.StatusCode, Message: "malformed token response", Err: decodeErr}
	case body.Error != "":
		return "", &AuthError{StatusCode: resp.StatusCode, Message: body.Error}
	case body.AccessToken == "":
		return "", &AuthError{StatusCode: resp.StatusCode, Message: "token response has no accessToken"}
	}

	return body.AccessToken, nil
}

// ClientCredentialsProvider exchanges a client id and secret for an app token.
type ClientCredentialsProvider struct {
	config     clientcredentials.Config
	httpClient *http.Client
}

// NewClientCredentialsProvider creates a provider from Spotify credentials. An empty token URL uses [SpotifyTokenURL].
func NewClientCredentialsProvider(creds shared.SpotifyConfig, client *http.Client) (*ClientCredentialsProvider, error) {
	if !creds.Valid() {
		return nil, shared.ErrMissingCredentials
	}

	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}

	return &ClientCredentialsProvider{
		config: clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: client,
	}, nil
}

// FetchAccessToken performs the exchange. Upstream rejections keep their status code.
func (p *ClientCredentialsProvider) FetchAccessToken(ctx context.Context) (string, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	token, err := p.config.Token(ctx)
	if err != nil {
		authErr := &AuthError{Message: err.Error(), Err: err}

		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			authErr.StatusCode = re.Response.StatusCode
			authErr.Message = retrieveMessage(re)
		}
		return "", authErr
	}

	return token.AccessToken, nil
}

func retrieveMessage(re *oauth2.RetrieveError) string {
	switch {
	case re.ErrorDescription != "":
		return re.ErrorDescription
	case re.ErrorCode != "":
		return re.ErrorCode
	case len(re.Body) > 0:
		return strings.TrimSpace(string(re.Body))
	default:
		return http.StatusText(re.Response.StatusCode)
	}
}
