package comment

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, c *Comment) error
	FindByID(db *gorm.DB, id uint) (*Comment, error)
	ListBySubmission(db *gorm.DB, submissionID uint) ([]Comment, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, c *Comment) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Comment, error) {
	var c Comment
	if err := db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) ListBySubmission(db *gorm.DB, submissionID uint) ([]Comment, error) {
	var list []Comment
	err := db.Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
