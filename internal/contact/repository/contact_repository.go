package repository

import (
	"errors"
	"time"

	"netcrm-backend/internal/contact/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(contact *domain.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = time.Now()
	return r.db.Create(contact).Error
}

func (r *contactRepository) FindByID(id string) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.Where("id = ?", id).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) FindByUser(userID string, filter ListFilter) ([]*domain.Contact, int64, error) {
	query := r.db.Model(&domain.Contact{}).Where("user_id = ?", userID)

	if filter.Tag != "" {
		// Tags are stored as a JSON array in a text column.
		query = query.Where("tags LIKE ?", "%\""+filter.Tag+"\"%")
	}
	if filter.Band != "" {
		query = query.Where("band = ?", filter.Band)
	}
	if filter.Archived != nil {
		query = query.Where("archived = ?", *filter.Archived)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR company ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.OrderBy {
	case "strength":
		query = query.Order("strength DESC")
	case "last_interaction":
		query = query.Order("last_interaction_at DESC NULLS LAST")
	default:
		query = query.Order("name ASC")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query = query.Limit(limit).Offset(filter.Offset)

	var contacts []*domain.Contact
	if err := query.Find(&contacts).Error; err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (r *contactRepository) FindAllByUser(userID string) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	err := r.db.Where("user_id = ? AND archived = ?", userID, false).Find(&contacts).Error
	return contacts, err
}

// FindByEmail matches the primary address exactly and alternates by JSON
// containment on the text column.
func (r *contactRepository) FindByEmail(userID, email string) (*domain.Contact, error) {
	var contact domain.Contact
	err := r.db.Where("user_id = ? AND (email = ? OR alt_emails LIKE ?)", userID, email, "%\""+email+"\"%").
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) Update(contact *domain.Contact) error {
	contact.UpdatedAt = time.Now()
	return r.db.Save(contact).Error
}

func (r *contactRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.Contact{}).Error
}
