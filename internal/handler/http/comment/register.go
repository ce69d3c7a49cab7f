package comment

import (
	"log/slog"
	"net/http"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/crud"
)

// Register registers the comment routes with the given mux. Reading and
// creating are open; update and delete need a login.
func Register(mux *http.ServeMux, svc crud.Service[entity.Comment], logger *slog.Logger) {
	crud.Register(mux, "/comments", svc, ToDTO, logger)
}
