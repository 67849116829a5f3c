package domain

// Artwork — запись каталога: метаданные одного произведения.
// Строка i таблицы метаданных соответствует точке i векторного индекса.
type Artwork struct {
	Artist    string
	Title     string
	Period    string
	ImagePath string
}

func NewArtwork(artist, title, period, imagePath string) *Artwork {
	return &Artwork{
		Artist:    artist,
		Title:     title,
		Period:    period,
		ImagePath: imagePath,
	}
}
