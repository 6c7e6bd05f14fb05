package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	intconfig "rental-backend/internal/config"
	intdb "rental-backend/internal/db"
	"rental-backend/internal/domain"
	"rental-backend/internal/domain/models"
)

type NotificationRepository struct {
	DB *sql.DB
}

func (r NotificationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const notificationColumns = `id, user_id, title, message, COALESCE(type,''), COALESCE(channel,''),
	COALESCE(email,''), COALESCE(phone,''), is_read, processed, processed_at, delivery_results, created_at`

func scanNotification(scan func(dest ...any) error) (models.Notification, error) {
	var n models.Notification
	var processedAt sql.NullTime
	var results sql.NullString
	err := scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Channel,
		&n.Email, &n.Phone, &n.Read, &n.Processed, &processedAt, &results, &n.CreatedAt)
	if err != nil {
		return models.Notification{}, err
	}
	if processedAt.Valid {
		t := processedAt.Time
		n.ProcessedAt = &t
	}
	if results.Valid && results.String != "" {
		_ = json.Unmarshal([]byte(results.String), &n.DeliveryResults)
	}
	return n, nil
}

// Insert runs inside the caller's transaction when the notification commits
// together with the business write that caused it.
func (r NotificationRepository) Insert(q intdb.Queryer, n models.Notification) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO notifications (user_id, title, message, type, channel, email, phone)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, strings.TrimSpace(n.Title), strings.TrimSpace(n.Message),
		strings.TrimSpace(n.Type), strings.TrimSpace(n.Channel),
		strings.TrimSpace(n.Email), strings.TrimSpace(n.Phone))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r NotificationRepository) GetByID(id int64) (models.Notification, error) {
	row := r.db().QueryRow(`SELECT `+notificationColumns+` FROM notifications WHERE id=? LIMIT 1`, id)
	n, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, domain.NotFoundError{Resource: "notification"}
		}
		return models.Notification{}, err
	}
	return n, nil
}

// MarkProcessed stamps the dispatch outcome. Delivery results are stored as
// JSON so per-channel errors survive for retry inspection.
func (r NotificationRepository) MarkProcessed(id int64, results map[string]models.DeliveryResult, at time.Time) error {
	b, err := json.Marshal(results)
	if err != nil {
		return err
	}
	res, err := r.db().Exec(`
		UPDATE notifications SET processed=1, processed_at=?, delivery_results=? WHERE id=?`,
		at, string(b), id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "notification"}
	}
	return nil
}

func (r NotificationRepository) MarkRead(id, userID int64) error {
	res, err := r.db().Exec(`
		UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.NotFoundError{Resource: "notification"}
	}
	return nil
}

func (r NotificationRepository) ListByUser(userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id=?`
	args := []any{userID}
	if unreadOnly {
		query += ` AND is_read=0`
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}
