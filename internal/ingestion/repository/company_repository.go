package repository

import (
	"context"

	"newspulse/internal/entity"

	"gorm.io/gorm"
)

// CompanyRepository loads the tracked-company registry.
type CompanyRepository interface {
	GetCompanies(ctx context.Context) ([]entity.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new instance of CompanyRepository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetCompanies(ctx context.Context) ([]entity.Company, error) {
	var companies []entity.Company
	if err := r.db.WithContext(ctx).Order("ticker ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
