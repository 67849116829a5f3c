package usecase

// RECOGNITION USECASE

// RecognizeReq — запрос на распознавание одного изображения.
type RecognizeReq struct {
	Image       []byte // исходные байты изображения
	MimeType    string // Content-Type из multipart (image/jpeg)
	ShowContext bool   // добавить похожие работы в описание
}

// SubmitReq — запрос продюсера на постановку в очередь (распределённый режим).
type SubmitReq struct {
	Image       []byte
	ShowContext bool
}

// DescribeReq — запрос на генерацию описания произведения.
type DescribeReq struct {
	Artist string
	Title  string
	Period string
}

// DescribeRes — текст описания с пометкой источника (LLM или шаблон).
type DescribeRes struct {
	Text      string
	Generated bool
}

// RecognitionEvent — событие распознавания для публикации во внешнюю шину.
type RecognitionEvent struct {
	EventID      string  `json:"event_id"`
	Artist       string  `json:"artist"`
	Status       string  `json:"status"`
	Confidence   float64 `json:"confidence"`
	ResponseTime float64 `json:"response_time"`
	Timestamp    int64   `json:"timestamp"`
}

// MAPPERS

func NewRecognizeReq(image []byte, mimeType string, showContext bool) *RecognizeReq {
	return &RecognizeReq{
		Image:       image,
		MimeType:    mimeType,
		ShowContext: showContext,
	}
}

func NewSubmitReq(image []byte, showContext bool) *SubmitReq {
	return &SubmitReq{
		Image:       image,
		ShowContext: showContext,
	}
}

func NewDescribeReq(artist, title, period string) *DescribeReq {
	return &DescribeReq{
		Artist: artist,
		Title:  title,
		Period: period,
	}
}

func NewDescribeRes(text string, generated bool) *DescribeRes {
	return &DescribeRes{
		Text:      text,
		Generated: generated,
	}
}
