package domain

import "time"

// RecognitionRequest — сообщение очереди запросов распределённого режима.
// Поле Image сериализуется encoding/json в base64-строку.
type RecognitionRequest struct {
	RequestID   string    `json:"request_id"`
	Image       []byte    `json:"image"`
	ShowContext bool      `json:"show_context"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func NewRecognitionRequest(requestID string, image []byte, showContext bool) *RecognitionRequest {
	return &RecognitionRequest{
		RequestID:   requestID,
		Image:       image,
		ShowContext: showContext,
		SubmittedAt: time.Now().UTC(),
	}
}

// RecognitionResponse — ответ воркера, записывается в хранилище ответов
// под ключом request_id с ограниченным TTL.
type RecognitionResponse struct {
	RequestID   string            `json:"request_id"`
	Status      RecognitionStatus `json:"status"`
	Artist      string            `json:"artist"`
	Title       string            `json:"title"`
	Period      string            `json:"period"`
	Confidence  float64           `json:"confidence"`
	Description string            `json:"description"`
	Message     string            `json:"message,omitempty"`
}

// NewRecognitionResponse собирает ответ из результата пайплайна.
func NewRecognitionResponse(requestID string, res *RecognitionResult) *RecognitionResponse {
	return &RecognitionResponse{
		RequestID:   requestID,
		Status:      res.Status,
		Artist:      res.Artist,
		Title:       res.Title,
		Period:      res.Period,
		Confidence:  res.Confidence,
		Description: res.Description,
		Message:     res.Message,
	}
}

// NewErrorResponse — ответ об ошибке для некорректного запроса с известным request_id.
func NewErrorResponse(requestID, message string) *RecognitionResponse {
	return &RecognitionResponse{
		RequestID:   requestID,
		Status:      StatusError,
		Artist:      "Unknown",
		Title:       "Unknown",
		Period:      "Unknown",
		Confidence:  0.0,
		Description: "An error occurred during recognition.",
		Message:     message,
	}
}
