package httpdto

type SendMessageRequest struct {
	Content string `json:"content"`
}

type MarkReadRequest struct {
	MessageID string `json:"messageId"`
}
