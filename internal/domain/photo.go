package domain

// Photo — загруженное пользователем фото для фоновой архивации в объектное хранилище.
type Photo struct {
	ID        string
	Bucket    string
	ObjectKey string
	Bytes     []byte
	Size      int64
	MimeType  string
}

func NewPhoto(id, bucket, objectKey string, data []byte, mimeType string) *Photo {
	return &Photo{
		ID:        id,
		Bucket:    bucket,
		ObjectKey: objectKey,
		Bytes:     data,
		Size:      int64(len(data)),
		MimeType:  mimeType,
	}
}
