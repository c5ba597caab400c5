// Package api maps each backend operation onto an httpclient call. With
// mock mode on, every operation answers from the mocks provider instead and
// never touches the network.
package api

import (
	"context"
	"fmt"

	"course_miniapp/httpclient"
	"course_miniapp/mocks"
)

// Tokens issued in mock mode so the session flow behaves like the real one.
const (
	MockDevToken      = "mock-dev-token"
	MockTelegramToken = "mock-telegram-token"
)

// TelegramInitDataHeader carries the raw init data next to the JSON body.
const TelegramInitDataHeader = "X-Telegram-Init-Data"

// Options configures the API surface.
type Options struct {
	UseMocks bool
	// Mocks defaults to the embedded fixtures.
	Mocks *mocks.Provider
}

// Backend is the set of named remote operations.
type Backend struct {
	client   *httpclient.Client
	tokens   httpclient.TokenStore
	mocks    *mocks.Provider
	useMocks bool
}

func New(client *httpclient.Client, opts Options) (*Backend, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	provider := opts.Mocks
	if provider == nil {
		var err error
		if provider, err = mocks.New(); err != nil {
			return nil, err
		}
	}
	return &Backend{
		client:   client,
		tokens:   client.Tokens(),
		mocks:    provider,
		useMocks: opts.UseMocks,
	}, nil
}

// UseMocks reports whether operations are served from fixtures.
func (b *Backend) UseMocks() bool {
	return b.useMocks
}

// BaseURL is the backend base the client talks to.
func (b *Backend) BaseURL() string {
	return b.client.BaseURL()
}

// Token returns the active session token, "" when anonymous.
func (b *Backend) Token() (string, error) {
	return b.tokens.Token()
}

// withMock answers from mock when mock mode is on, else calls real.
func withMock[T any](b *Backend, mock func() T, real func() (T, error)) (T, error) {
	if b.useMocks {
		return mock(), nil
	}
	return real()
}

// decode runs a request and decodes its JSON body into T.
func decode[T any](body httpclient.Body, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if err := body.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func (b *Backend) get(ctx context.Context, path string, opts ...httpclient.RequestOption) (httpclient.Body, error) {
	return b.client.Get(ctx, path, opts...)
}
