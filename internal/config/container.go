package config

import (
	"digital-garden/internal/domain"
	"digital-garden/internal/repository"
	"digital-garden/internal/service"
	"digital-garden/internal/store"
	"digital-garden/pkg/logger"
	"digital-garden/pkg/retry"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient
	Library        *store.Library
	AuthService    domain.AuthService
	SearchService  domain.BookSearchService
	ImportService  *service.ImportService
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Initialize Supabase client
	supabaseClient := repository.NewSupabaseClient(config, appLogger)

	// Initialize repositories
	bookRepo := repository.NewBookRepository(supabaseClient, appLogger)
	noteRepo := repository.NewNoteRepository(supabaseClient, appLogger)
	profileRepo := repository.NewProfileRepository(supabaseClient, appLogger)
	snapshotStore := repository.NewLegacySnapshotStore(config.GetLegacySnapshotPath(), appLogger)

	authService := service.NewAuthService(supabaseClient, appLogger)

	library := store.New(store.Deps{
		Books:           bookRepo,
		Notes:           noteRepo,
		Profiles:        profileRepo,
		LegacySnapshots: snapshotStore,
		ResolveIdentity: authService.ValidateToken,
		Logger:          appLogger,
		Retry:           retry.Default(),
	})

	searchService := service.NewGoogleBooksService(config.GetGoogleBooksAPIKey(), appLogger)
	importService := service.NewImportService(library, searchService, appLogger)

	return &Container{
		Config:         config,
		Logger:         appLogger,
		SupabaseClient: supabaseClient,
		Library:        library,
		AuthService:    authService,
		SearchService:  searchService,
		ImportService:  importService,
	}
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}

// GetSupabaseClient returns the Supabase client instance
func (c *Container) GetSupabaseClient() domain.SupabaseClient {
	return c.SupabaseClient
}

// GetLibrary returns the library store instance
func (c *Container) GetLibrary() *store.Library {
	return c.Library
}

// GetAuthService returns the auth service instance
func (c *Container) GetAuthService() domain.AuthService {
	return c.AuthService
}

// GetSearchService returns the book search service instance
func (c *Container) GetSearchService() domain.BookSearchService {
	return c.SearchService
}

// GetImportService returns the CSV import service instance
func (c *Container) GetImportService() *service.ImportService {
	return c.ImportService
}
