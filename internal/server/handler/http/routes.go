package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souvenirshop/backend/internal/logging"
)

// NewRouter constructs the HTTP handler serving the catalog API.
//
// Routes mirror the public API surface:
//
//	/api/user      registration, login, token check, user CRUD
//	/api/souvenir  souvenir CRUD, cascading delete, owned images
//	/api/image     image CRUD, multipart upload, URL resolution
//	/uploads/*     static files of the filesystem blob backend (optional)
//
// Mutating routes require a valid bearer token; reads are public, matching
// the original catalog behavior.
func NewRouter(
	userHandler *UserHandler,
	souvenirHandler *SouvenirHandler,
	imageHandler *ImageHandler,
	logger logging.Logger,
	jwtSecret []byte,
	uploadDir string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(WithRequestLogging(logger))

	authenticated := JWTAuth(jwtSecret)

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/token-check", userHandler.VerifyToken)
			r.Post("/login", userHandler.Login)
			r.Post("/", userHandler.Register)
			r.Get("/all", userHandler.FindAll)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Get("/{id}", userHandler.FindOne)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
				r.Delete("/", userHandler.DeleteAll)
			})
		})

		r.Route("/souvenir", func(r chi.Router) {
			r.Get("/all", souvenirHandler.FindAll)
			r.Get("/{id}", souvenirHandler.FindOne)
			r.Get("/{id}/images", souvenirHandler.FindImages)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Post("/", souvenirHandler.Create)
				r.Put("/{id}", souvenirHandler.Update)
				r.Delete("/{id}", souvenirHandler.Delete)
				r.Delete("/all", souvenirHandler.DeleteAll)
			})
		})

		r.Route("/image", func(r chi.Router) {
			r.Get("/all", imageHandler.FindAll)
			r.Get("/{id}", imageHandler.FindOne)
			r.Get("/souvenir/{souvenirId}", imageHandler.FindBySouvenir)
			r.Get("/img-url/{filename}", imageHandler.ImageURL)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Post("/upload-single/{souvenirId}", imageHandler.Upload)
				r.Post("/", imageHandler.Create)
				r.Put("/{id}", imageHandler.Update)
				r.Delete("/{id}", imageHandler.Delete)
				r.Delete("/", imageHandler.DeleteAll)
			})
		})
	})

	if uploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	return r
}
