package networking

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/ruihexianling/tg2notion/pkg/configuration"
)

const (
	defaultUserAgent string = "tg2notion"

	// VersionHeader is the fixed protocol-version header required by the API.
	VersionHeader = "Notion-Version"
)

// NetworkAccess hands out HTTP clients that attach the bearer credential and
// protocol-version header to every request addressing the configured API.
// The returned clients are safe for concurrent use.
type NetworkAccess interface {
	GetDefaultHeader(url *url.URL) http.Header
	GetRoundTripper() http.RoundTripper
	GetHTTPClient() *http.Client
	AddHeaderField(key string, value string)
}

type NetworkImpl struct {
	config       configuration.Configuration
	userAgent    string
	staticHeader http.Header
	logger       *zerolog.Logger
}

type customRoundTripper struct {
	encapsulatedRoundTripper http.RoundTripper
	networkAccess            NetworkAccess
}

func (crt *customRoundTripper) decorateRequest(request *http.Request) *http.Request {
	defaultHeader := crt.networkAccess.GetDefaultHeader(request.URL)

	// iterate over default headers and add them if there is no existing entry yet
	for k, v := range defaultHeader {
		if _, found := request.Header[k]; !found {
			for i := range v {
				request.Header.Add(k, v[i])
			}
		}
	}

	return request
}

func (crt *customRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	request = crt.decorateRequest(request)
	return crt.encapsulatedRoundTripper.RoundTrip(request)
}

// CloseIdleConnections forwards to the encapsulated transport so that
// http.Client.CloseIdleConnections reaches the real connection pool.
func (crt *customRoundTripper) CloseIdleConnections() {
	if transport, ok := crt.encapsulatedRoundTripper.(interface{ CloseIdleConnections() }); ok {
		transport.CloseIdleConnections()
	}
}

// NewNetworkAccess creates a NetworkAccess based on the given configuration.
func NewNetworkAccess(config configuration.Configuration) NetworkAccess {
	logger := zerolog.Nop()

	n := NetworkImpl{
		config:       config,
		userAgent:    defaultUserAgent,
		staticHeader: http.Header{},
		logger:       &logger,
	}

	return &n
}

func (n *NetworkImpl) AddHeaderField(key string, value string) {
	n.staticHeader[key] = append(n.staticHeader[key], value)
}

func (n *NetworkImpl) GetDefaultHeader(requestURL *url.URL) http.Header {
	h := http.Header{}

	// add static header
	for k, v := range n.staticHeader {
		for i := range v {
			h.Add(k, v[i])
		}
	}

	if requestURL != nil {
		apiURL, err := url.Parse(n.config.GetString(configuration.API_URL))
		if err != nil {
			apiURL, _ = url.Parse(configuration.DefaultAPIURL)
		}

		// requests to the api automatically get the credential and version headers attached
		if requestURL.Host == apiURL.Host {
			if token := n.config.GetString(configuration.AUTHENTICATION_TOKEN); len(token) > 0 {
				h.Add("Authorization", "Bearer "+token)
			}
			if version := n.config.GetString(configuration.NOTION_VERSION); len(version) > 0 {
				h.Add(VersionHeader, version)
			}
		}
	}

	h.Add("User-Agent", n.userAgent)
	return h
}

func (n *NetworkImpl) GetRoundTripper() http.RoundTripper {
	roundTrip := customRoundTripper{
		encapsulatedRoundTripper: http.DefaultTransport,
		networkAccess:            n,
	}
	return &roundTrip
}

func (n *NetworkImpl) GetHTTPClient() *http.Client {
	client := *http.DefaultClient
	client.Transport = n.GetRoundTripper()
	return &client
}
