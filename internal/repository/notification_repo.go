package repository

import (
	"context"
	"errors"

	"bloodalert/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository stores personal rows directly and keeps each user's
// read or hidden state for global rows in notification_receipts.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

const receiptExists = "EXISTS (SELECT 1 FROM notification_receipts nr WHERE nr.notification_id = notifications.id AND nr.user_id = ? AND "

func visibleTo(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.Notification{}).Where(
		"((notifications.is_global = ? AND notifications.user_id = ?) OR (notifications.is_global = ? AND NOT "+receiptExists+"nr.hidden = ?)))",
		false, userID, true, userID, true,
	)
}

func (r *NotificationRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	db := r.db.WithContext(ctx)
	q := visibleTo(db, userID).Order("notifications.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []models.Notification
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}

	var globals []string
	for _, n := range list {
		if n.IsGlobal {
			globals = append(globals, n.ID)
		}
	}
	if len(globals) == 0 {
		return list, nil
	}
	var read []string
	err := db.Model(&models.NotificationReceipt{}).
		Where("user_id = ? AND notification_id IN ? AND `read` = ?", userID, globals, true).
		Pluck("notification_id", &read).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(read))
	for _, id := range read {
		seen[id] = true
	}
	for i := range list {
		if list[i].IsGlobal {
			list[i].Read = seen[list[i].ID]
		}
	}
	return list, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where(
		"((notifications.is_global = ? AND notifications.user_id = ? AND notifications.`read` = ?) OR (notifications.is_global = ? AND NOT "+receiptExists+"(nr.`read` = ? OR nr.hidden = ?))))",
		false, userID, false, true, userID, true, true,
	).Count(&n).Error
	return n, err
}

// upsertReceipt sets one receipt column to true, creating the row if needed.
func upsertReceipt(db *gorm.DB, userID string, ids []string, column string) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.NotificationReceipt, 0, len(ids))
	for _, id := range ids {
		rc := models.NotificationReceipt{UserID: userID, NotificationID: id}
		switch column {
		case "read":
			rc.Read = true
		case "hidden":
			rc.Hidden = true
		}
		rows = append(rows, rc)
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "notification_id"}},
		DoUpdates: clause.AssignmentColumns([]string{column, "updated_at"}),
	}).Create(&rows).Error
}

func (r *NotificationRepository) findVisible(db *gorm.DB, userID, id string) (*models.Notification, error) {
	var n models.Notification
	err := visibleTo(db, userID).Where("notifications.id = ?", id).Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, userID, id string) error {
	db := r.db.WithContext(ctx)
	n, err := r.findVisible(db, userID, id)
	if err != nil {
		return err
	}
	if n.IsGlobal {
		return upsertReceipt(db, userID, []string{id}, "read")
	}
	return db.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

func (r *NotificationRepository) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Notification{}).
			Where("is_global = ? AND user_id = ? AND `read` = ?", false, userID, false).
			Update("read", true).Error
		if err != nil {
			return err
		}
		var globals []string
		if err := visibleTo(tx, userID).Where("notifications.is_global = ?", true).Pluck("notifications.id", &globals).Error; err != nil {
			return err
		}
		return upsertReceipt(tx, userID, globals, "read")
	})
}

// DeleteNotification removes a personal row. A global row is only hidden
// from userID, every other user keeps it.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, userID, id string) error {
	db := r.db.WithContext(ctx)
	n, err := r.findVisible(db, userID, id)
	if err != nil {
		return err
	}
	if n.IsGlobal {
		return upsertReceipt(db, userID, []string{id}, "hidden")
	}
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
