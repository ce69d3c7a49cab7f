package crud

import (
	"log/slog"
	"net/http"
	"strings"
)

// Register mounts the generic routes of a resource under prefix, e.g. "/comments".
//
//	GET    prefix                list
//	POST   prefix                create
//	GET    prefix/{id}           detail
//	PUT    prefix/{id}           update
//	DELETE prefix/{id}           delete (confirmed)
//	GET    prefix/{id}/delete    delete preview
//	POST   prefix/{id}/delete    delete (confirmed)
func Register[T, D any](mux *http.ServeMux, prefix string, svc Service[T], toDTO func(*T) D, logger *slog.Logger) {
	del := DeleteHandler[T, D]{Svc: svc, ToDTO: toDTO}
	listing := strings.Trim(prefix, "/")

	mux.Handle("GET "+prefix, ListHandler[T, D]{Svc: svc, ToDTO: toDTO, Listing: listing, Logger: logger})
	mux.Handle("POST "+prefix, CreateHandler[T, D]{Svc: svc, ToDTO: toDTO})
	mux.Handle("GET "+prefix+"/{id}", DetailHandler[T, D]{Svc: svc, ToDTO: toDTO})
	mux.Handle("PUT "+prefix+"/{id}", UpdateHandler[T, D]{Svc: svc, ToDTO: toDTO})
	mux.Handle("DELETE "+prefix+"/{id}", del)
	mux.Handle("GET "+prefix+"/{id}/delete", del)
	mux.Handle("POST "+prefix+"/{id}/delete", del)
}
