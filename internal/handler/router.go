package handler

import (
	"net/http"

	"digital-garden/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"digital-garden"}`))
	}).Methods("GET")

	logger := container.GetLogger()
	library := container.GetLibrary()

	// Initialize handlers
	bookHandler := NewBookHandler(library, logger)
	noteHandler := NewNoteHandler(library, logger)
	profileHandler := NewProfileHandler(library, logger)
	libraryHandler := NewLibraryHandler(library, logger)
	syncHandler := NewSyncHandler(library, logger, container.GetConfig().GetSyncTimeout())
	importHandler := NewImportHandler(container.GetImportService(), logger)
	searchHandler := NewSearchHandler(container.GetSearchService(), logger)

	// Token middleware: requests without a bearer token run in guest mode.
	api.Use(AuthMiddleware(container.GetAuthService(), logger))

	// Book routes
	api.HandleFunc("/books", bookHandler.GetBooks).Methods("GET")
	api.HandleFunc("/books", bookHandler.CreateBook).Methods("POST")
	api.HandleFunc("/books/dislike", bookHandler.DislikeBook).Methods("POST")
	api.HandleFunc("/books/active", bookHandler.SetActiveBook).Methods("PUT")
	api.HandleFunc("/books/{id}", bookHandler.UpdateBook).Methods("PATCH")
	api.HandleFunc("/books/{id}", bookHandler.DeleteBook).Methods("DELETE")
	api.HandleFunc("/books/{id}/progress", bookHandler.UpdateProgress).Methods("PUT")
	api.HandleFunc("/books/{id}/status", bookHandler.UpdateStatus).Methods("PUT")

	// Note routes
	api.HandleFunc("/notes", noteHandler.GetNotes).Methods("GET")
	api.HandleFunc("/notes", noteHandler.CreateNote).Methods("POST")
	api.HandleFunc("/notes/{id}", noteHandler.DeleteNote).Methods("DELETE")

	// Profile routes
	api.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")

	// Library views
	api.HandleFunc("/library", libraryHandler.GetLibrary).Methods("GET")
	api.HandleFunc("/library/export", libraryHandler.Export).Methods("GET")
	api.HandleFunc("/stats", libraryHandler.GetStats).Methods("GET")
	api.HandleFunc("/rewind", libraryHandler.GetRewind).Methods("GET")

	// Sync routes
	api.HandleFunc("/sync", syncHandler.TriggerSync).Methods("POST")
	api.HandleFunc("/sync/events", syncHandler.HandleAuthEvent).Methods("POST")

	// Import and search
	api.HandleFunc("/import", importHandler.ImportCSV).Methods("POST")
	api.HandleFunc("/search", searchHandler.Search).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // Next.js dev server
			"http://localhost:3001", // Alternative dev port
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
