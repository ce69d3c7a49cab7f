package category

import (
	"log/slog"
	"net/http"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/crud"
)

// Register registers the category routes with the given mux.
func Register(mux *http.ServeMux, svc crud.Service[entity.Category], logger *slog.Logger) {
	crud.Register(mux, "/categories", svc, ToDTO, logger)
}
