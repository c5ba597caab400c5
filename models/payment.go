package models

type CoursePaymentRequest struct {
	CourseID int `json:"course_id" binding:"required"`
}

type PaymentResponse struct {
	PaymentURL string `json:"payment_url"`
}
