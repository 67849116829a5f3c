package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RecognitionForm — распарсенные поля multipart-формы запроса распознавания.
type RecognitionForm struct {
	Image       []byte
	MimeType    string
	ShowContext bool
	Wait        bool
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrNoImage):
		return http.StatusBadRequest, e.ErrNoImage.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrResponseNotFound):
		return http.StatusNotFound, e.ErrResponseNotFound.Error()
	case errors.Is(err, e.ErrResponseTimeout):
		return http.StatusGatewayTimeout, e.ErrResponseTimeout.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return r.ParseMultipartForm(maxMemory)
}

func parseRecognitionForm(r *http.Request) (*RecognitionForm, error) {
	const maxFileSize = 15 << 20

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrNoImage)
	}

	data, mimeType, err := readFile(files[0], maxFileSize)
	if err != nil {
		return nil, err
	}

	return &RecognitionForm{
		Image:       data,
		MimeType:    mimeType,
		ShowContext: parseBoolField(r.FormValue("show_context"), false),
		// По умолчанию запрос ждёт результат; wait=false переводит в асинхронный режим
		Wait: parseBoolField(r.FormValue("wait"), true),
	}, nil
}

// parseBoolField трактует отсутствующее или нераспознанное значение как def.
func parseBoolField(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if len(data) == 0 {
		return nil, "", e.Wrap(fh.Filename, e.ErrNoImage)
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
