package repository

import "gorm.io/gorm"

// Repository bundles the repositories of the history store.
type Repository struct {
	Dispatch DispatchRepository
}

// NewRepository creates the Repository bundle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Dispatch: NewDispatchRepo(db),
	}
}
