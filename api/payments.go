package api

import (
	"context"
	"io"

	"course_miniapp/httpclient"
	"course_miniapp/models"
)

func (b *Backend) CreateCoursePayment(ctx context.Context, courseID int) (models.PaymentResponse, error) {
	return withMock(b,
		func() models.PaymentResponse { return b.mocks.CreateCoursePayment(courseID) },
		func() (models.PaymentResponse, error) {
			return decode[models.PaymentResponse](b.client.Post(ctx, "/payments/course",
				models.CoursePaymentRequest{CourseID: courseID}))
		})
}

// SetupWebhook asks the backend to register its payment webhook and passes
// the answer through unchanged.
func (b *Backend) SetupWebhook(ctx context.Context) (any, error) {
	return withMock(b, mockWebhookAck, func() (any, error) {
		body, err := b.get(ctx, "/setup-webhook", httpclient.WithoutAuth())
		return body.Value(), err
	})
}

// RelayTochkaWebhook forwards a payment provider notification verbatim.
func (b *Backend) RelayTochkaWebhook(ctx context.Context, contentType string, payload io.Reader) (any, error) {
	return withMock(b, mockWebhookAck, func() (any, error) {
		opts := []httpclient.RequestOption{httpclient.WithoutAuth()}
		if contentType != "" {
			opts = append(opts, httpclient.WithHeader("Content-Type", contentType))
		}
		body, err := b.client.Post(ctx, "/payments/webhook/tochka", payload, opts...)
		return body.Value(), err
	})
}

func mockWebhookAck() any {
	return map[string]any{"ok": true}
}
