package api

import (
	"context"
	"fmt"

	"course_miniapp/httpclient"
	"course_miniapp/models"
)

// AuthWithTelegram exchanges mini-app init data for a session token and
// stores it.
func (b *Backend) AuthWithTelegram(ctx context.Context, initData string) (models.AuthResponse, error) {
	res, err := withMock(b,
		func() models.AuthResponse { return models.AuthResponse{Token: MockTelegramToken} },
		func() (models.AuthResponse, error) {
			return decode[models.AuthResponse](b.client.Post(ctx, "/auth/telegram",
				models.TelegramAuthRequest{InitData: initData},
				httpclient.WithoutAuth(),
				httpclient.WithHeader(TelegramInitDataHeader, initData),
			))
		})
	if err != nil {
		return res, err
	}
	return res, b.storeToken(res.Token)
}

// DevLogin is the developer bypass login.
func (b *Backend) DevLogin(ctx context.Context) (models.AuthResponse, error) {
	res, err := withMock(b,
		func() models.AuthResponse { return models.AuthResponse{Token: MockDevToken} },
		func() (models.AuthResponse, error) {
			return decode[models.AuthResponse](b.client.Post(ctx, "/dev/login", struct{}{}, httpclient.WithoutAuth()))
		})
	if err != nil {
		return res, err
	}
	return res, b.storeToken(res.Token)
}

// Logout forgets the session token. There is no server call.
func (b *Backend) Logout() error {
	return b.tokens.ClearToken()
}

func (b *Backend) storeToken(token string) error {
	if err := b.tokens.SetToken(token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}
