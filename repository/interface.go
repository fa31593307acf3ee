package repository

import (
	"context"

	"astrobook/models"
)

// TemplateCatalogInterface defines the contract for page template lookups
type TemplateCatalogInterface interface {
	GetAvailablePages(scope models.Scope) (models.AvailablePageSet, error)
	GetPage(number int) (models.PageTemplate, error)
	Summary() models.CatalogSummary
}

// UserDataRepositoryInterface defines the contract for reading stored quiz answers
type UserDataRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID string) (models.UserData, error)
}
