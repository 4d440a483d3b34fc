package comment

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a review-thread message on a submission. Both the owning
// salesperson and managers can write them; the thread is how a flagged
// submission gets clarified without leaving the record.
type Comment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubmissionID uint           `gorm:"not null;index" json:"submissionId"`
	AuthorID     uint           `gorm:"not null" json:"authorId"`
	AuthorName   string         `gorm:"size:255" json:"authorName"`
	AuthorRole   string         `gorm:"size:20" json:"authorRole"`
	Body         string         `gorm:"type:text;not null" json:"body"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Comment{})
}
