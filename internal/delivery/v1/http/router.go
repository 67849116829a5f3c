package http

import (
	"net/http"

	"github.com/albesa-team/artguide-backend/internal/usecase"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// Init регистрирует маршруты. dispatchUC равен nil в автономном режиме:
// тогда распознавание выполняется синхронно внутри обработчика.
// catalog передаётся только процессом, где пайплайн выполняется локально.
func (r *Router) Init(recognitionUC usecase.RecognitionUC, dispatchUC usecase.DispatchUC, catalog usecase.CatalogRepository) {
	r.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		if dispatchUC == nil {
			size := 0
			if catalog != nil {
				size = catalog.Size()
			}
			body["catalog_size"] = size
			body["catalog_available"] = size > 0
		}
		WriteSuccess(w, http.StatusOK, body)
	})

	r.router.Route("/api/v1", func(v1 chi.Router) {
		handler := NewRecognitionHandler(recognitionUC, dispatchUC, r.logger)
		registerRecognitionRoutes(v1, handler)
	})
}

func registerRecognitionRoutes(router chi.Router, handler *RecognitionHandler) {
	router.Route("/recognitions", func(rec chi.Router) {
		rec.Post("/", handler.recognize)
		rec.Get("/{request_id}", handler.fetchResult)
	})
}
