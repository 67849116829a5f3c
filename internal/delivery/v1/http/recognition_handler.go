package http

import (
	"net/http"

	"github.com/albesa-team/artguide-backend/internal/domain"
	"github.com/albesa-team/artguide-backend/internal/usecase"
	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type RecognitionHandler struct {
	recognitionUC usecase.RecognitionUC
	dispatchUC    usecase.DispatchUC
	logger        logger.Logger
}

// RecognitionView — тело ответа с результатом распознавания.
type RecognitionView struct {
	Status       domain.RecognitionStatus `json:"status"`
	Artist       string                   `json:"artist"`
	Title        string                   `json:"title"`
	Period       string                   `json:"period"`
	Confidence   float64                  `json:"confidence"`
	Description  string                   `json:"description"`
	Message      string                   `json:"message,omitempty"`
	ResponseTime float64                  `json:"response_time,omitempty"`
}

func NewRecognitionHandler(recognitionUC usecase.RecognitionUC, dispatchUC usecase.DispatchUC, logger logger.Logger) *RecognitionHandler {
	return &RecognitionHandler{recognitionUC: recognitionUC, dispatchUC: dispatchUC, logger: logger}
}

func newRecognitionView(res *domain.RecognitionResult) *RecognitionView {
	return &RecognitionView{
		Status:       res.Status,
		Artist:       res.Artist,
		Title:        res.Title,
		Period:       res.Period,
		Confidence:   res.Confidence,
		Description:  res.Description,
		Message:      res.Message,
		ResponseTime: res.ResponseTime,
	}
}

func newResponseView(resp *domain.RecognitionResponse) *RecognitionView {
	return &RecognitionView{
		Status:      resp.Status,
		Artist:      resp.Artist,
		Title:       resp.Title,
		Period:      resp.Period,
		Confidence:  resp.Confidence,
		Description: resp.Description,
		Message:     resp.Message,
	}
}

// recognize принимает multipart-форму с полем image и опциональными
// show_context и wait. В автономном режиме пайплайн выполняется синхронно;
// в распределённом запрос уходит в очередь, а wait=true заставляет
// обработчик дождаться ответа воркера.
func (h *RecognitionHandler) recognize(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 16 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	form, err := parseRecognitionForm(r)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	if h.dispatchUC == nil {
		res := h.recognitionUC.Recognize(r.Context(), usecase.NewRecognizeReq(form.Image, form.MimeType, form.ShowContext))
		WriteSuccess(w, http.StatusOK, newRecognitionView(res))
		return
	}

	requestID, err := h.dispatchUC.Submit(r.Context(), usecase.NewSubmitReq(form.Image, form.ShowContext))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	if !form.Wait {
		WriteSuccess(w, http.StatusAccepted, map[string]interface{}{
			"request_id": requestID,
		})
		return
	}

	resp, err := h.dispatchUC.Await(r.Context(), requestID)
	if err != nil {
		h.logger.Warnf("await %s: %s", requestID, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newResponseView(resp))
}

// fetchResult возвращает готовый ответ по request_id. 404 означает,
// что ответ ещё не записан либо его TTL уже истёк.
func (h *RecognitionHandler) fetchResult(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "request_id")
	if requestID == "" {
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if h.dispatchUC == nil {
		WriteError(w, e.ErrResponseNotFound)
		return
	}

	resp, err := h.dispatchUC.Fetch(r.Context(), requestID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, newResponseView(resp))
}
