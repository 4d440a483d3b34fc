package submission

import (
	"time"

	"gorm.io/gorm"
)

// Filters narrows List results. Zero values mean "no filter".
type Filters struct {
	SalespersonID uint
	Status        Status
	StartDate     time.Time
	EndDate       time.Time
	ClientName    string
	InvoiceNumber string
	Page          int
	PerPage       int
}

type Repository interface {
	Create(db *gorm.DB, s *Submission) error
	FindByID(db *gorm.DB, id uint) (*Submission, error)
	List(db *gorm.DB, f Filters) ([]Submission, int64, error)
	ListAll(db *gorm.DB) ([]Submission, error)
	ListBySalesperson(db *gorm.DB, salespersonID uint) ([]Submission, error)
	SaveWithVersion(db *gorm.DB, s *Submission) error
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, s *Submission) error {
	return db.Create(s).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Submission, error) {
	var s Submission
	if err := db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func applyFilters(db *gorm.DB, f Filters) *gorm.DB {
	q := db.Model(&Submission{})
	if f.SalespersonID != 0 {
		q = q.Where("salesperson_id = ?", f.SalespersonID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.StartDate.IsZero() {
		q = q.Where("document_date >= ?", f.StartDate)
	}
	if !f.EndDate.IsZero() {
		q = q.Where("document_date <= ?", f.EndDate)
	}
	if f.ClientName != "" {
		q = q.Where("client_name ILIKE ?", "%"+f.ClientName+"%")
	}
	if f.InvoiceNumber != "" {
		q = q.Where("invoice_number = ?", f.InvoiceNumber)
	}
	return q
}

func (r *repositoryImpl) List(db *gorm.DB, f Filters) ([]Submission, int64, error) {
	q := applyFilters(db, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.PerPage <= 0 {
		f.PerPage = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	var list []Submission
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&list).Error
	return list, total, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Submission, error) {
	var list []Submission
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListBySalesperson(db *gorm.DB, salespersonID uint) ([]Submission, error) {
	var list []Submission
	err := db.Where("salesperson_id = ?", salespersonID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// SaveWithVersion persists the record with a compare-and-swap on the version
// column. When a concurrent writer got there first, nothing matches and the
// caller gets ErrConflict; refetch and retry.
func (r *repositoryImpl) SaveWithVersion(db *gorm.DB, s *Submission) error {
	current := s.Version
	s.Version = current + 1
	res := db.Model(&Submission{}).
		Where("id = ? AND version = ?", s.ID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(s)
	if res.Error != nil {
		s.Version = current
		return res.Error
	}
	if res.RowsAffected == 0 {
		s.Version = current
		return ErrConflict
	}
	return nil
}

// Delete removes the record (soft delete via gorm.DeletedAt).
func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&Submission{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
