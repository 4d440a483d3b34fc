package invite

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, i *Invite) error
	FindByToken(db *gorm.DB, token string) (*Invite, error)
	FindByID(db *gorm.DB, id uint) (*Invite, error)
	FindPendingByEmail(db *gorm.DB, email string) (*Invite, error)
	ListAll(db *gorm.DB) ([]Invite, error)
	Save(db *gorm.DB, i *Invite) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, i *Invite) error {
	return db.Create(i).Error
}

func (r *repositoryImpl) FindByToken(db *gorm.DB, token string) (*Invite, error) {
	var i Invite
	if err := db.Where("token = ?", token).First(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Invite, error) {
	var i Invite
	if err := db.First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *repositoryImpl) FindPendingByEmail(db *gorm.DB, email string) (*Invite, error) {
	var i Invite
	err := db.Where("email = ? AND status = ?", email, StatusPending).First(&i).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Invite, error) {
	var list []Invite
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Save(db *gorm.DB, i *Invite) error {
	return db.Save(i).Error
}
