package dto

import "cafe-ordering/internal/domain"

type UpdateStatusRequest struct {
	Status        string `json:"status"`
	EstimatedTime int    `json:"estimatedTime"`
	CompanyID     string `json:"companyId"`
}

type CreatePendingOrderRequest struct {
	SessionID string             `json:"sessionId"`
	Items     []domain.ItemInput `json:"items"`
	Notes     string             `json:"notes"`
}

type SubmitPaymentRequest struct {
	SessionID     string `json:"sessionId"`
	Method        string `json:"method"`
	ScreenshotURL string `json:"screenshotUrl"`
}

type ReviewRequest struct {
	Reason string `json:"reason"`
}
