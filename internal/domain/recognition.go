package domain

// RecognitionStatus — итоговый статус запроса распознавания.
type RecognitionStatus string

const (
	StatusSuccess     RecognitionStatus = "success"
	StatusUnavailable RecognitionStatus = "unavailable"
	StatusError       RecognitionStatus = "error"
)

// DescriptionSource помечает происхождение текста описания:
// сгенерирован LLM или собран детерминированным шаблоном.
type DescriptionSource string

const (
	DescriptionGenerated DescriptionSource = "generated"
	DescriptionFallback  DescriptionSource = "fallback"
)

// IndexHit — один результат поиска по индексу: номер строки каталога и расстояние.
type IndexHit struct {
	Row      uint64
	Distance float32
}

// RecognitionResult — результат одного запроса распознавания.
// Confidence вычисляется как exp(-distance): монотонно убывающее преобразование
// расстояния, а не калиброванная вероятность.
type RecognitionResult struct {
	Artist            string
	Title             string
	Period            string
	Confidence        float64
	Description       string
	DescriptionSource DescriptionSource
	Status            RecognitionStatus
	Message           string  // безопасное для пользователя сообщение при status != success
	ResponseTime      float64 // секунды, округлены до двух знаков
}
