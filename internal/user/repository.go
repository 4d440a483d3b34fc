package user

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	FindByEmail(db *gorm.DB, email string) (*User, error)
	FindByID(db *gorm.DB, id uint) (*User, error)
	ListAll(db *gorm.DB) ([]User, error)
	Save(db *gorm.DB, u *User) error
	UpdateCommissionRate(db *gorm.DB, id uint, rate decimal.Decimal) error
	UpdateActive(db *gorm.DB, id uint, active bool) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*User, error) {
	var u User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*User, error) {
	var u User
	if err := db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]User, error) {
	var users []User
	err := db.Order("full_name ASC").Find(&users).Error
	return users, err
}

func (r *repositoryImpl) Save(db *gorm.DB, u *User) error {
	return db.Save(u).Error
}

// UpdateCommissionRate changes the rate going forward only; existing
// submissions keep the snapshot taken when they were created.
func (r *repositoryImpl) UpdateCommissionRate(db *gorm.DB, id uint, rate decimal.Decimal) error {
	res := db.Model(&User{}).Where("id = ?", id).Update("commission_rate", rate)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) UpdateActive(db *gorm.DB, id uint, active bool) error {
	res := db.Model(&User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
