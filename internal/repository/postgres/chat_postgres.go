package postgres

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"fxacademy/internal/model"
	"fxacademy/internal/repository"
)

// ChatPostgres is a PostgreSQL implementation of repository.ChatRepository.
type ChatPostgres struct {
	db *sql.DB
}

func NewChatPostgres(db *sql.DB) *ChatPostgres {
	return &ChatPostgres{db: db}
}

var _ repository.ChatRepository = (*ChatPostgres)(nil)

func (r *ChatPostgres) CreateMessage(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	const q = `
		INSERT INTO chat_messages (id, room, user_id, lesson_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, room, user_id, lesson_id, body, created_at
	`
	var out model.ChatMessage
	if err := r.db.QueryRowContext(ctx, q,
		m.ID,
		m.Room,
		m.UserID,
		m.LessonID,
		m.Body,
		m.CreatedAt,
	).Scan(
		&out.ID,
		&out.Room,
		&out.UserID,
		&out.LessonID,
		&out.Body,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	out.Author = m.Author
	return &out, nil
}

// History selects the newest page first and reverses it so callers get chronological order.
func (r *ChatPostgres) History(ctx context.Context, room string, before *time.Time, limit int) ([]model.ChatMessage, error) {
	const q = `
		SELECT m.id, m.room, m.user_id, m.lesson_id, m.body, m.created_at, u.name, u.role
		FROM chat_messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.room = $1 AND ($2::timestamptz IS NULL OR m.created_at < $2)
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, q, room, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ChatMessage, 0)
	for rows.Next() {
		var (
			m      model.ChatMessage
			author model.UserSummary
		)
		if err := rows.Scan(
			&m.ID,
			&m.Room,
			&m.UserID,
			&m.LessonID,
			&m.Body,
			&m.CreatedAt,
			&author.Name,
			&author.Role,
		); err != nil {
			return nil, err
		}
		author.ID = m.UserID
		m.Author = &author
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(items)
	return items, nil
}

// PrivateRoomPostgres is a PostgreSQL implementation of repository.PrivateRoomRepository.
type PrivateRoomPostgres struct {
	db *sql.DB
}

func NewPrivateRoomPostgres(db *sql.DB) *PrivateRoomPostgres {
	return &PrivateRoomPostgres{db: db}
}

var _ repository.PrivateRoomRepository = (*PrivateRoomPostgres)(nil)

func (r *PrivateRoomPostgres) Open(ctx context.Context, room *model.PrivateRoom) (*model.PrivateRoom, error) {
	const q = `
		INSERT INTO private_rooms (id, user_a, user_b, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET id = private_rooms.id
		RETURNING id, user_a, user_b, created_at, last_message_at
	`
	var out model.PrivateRoom
	if err := r.db.QueryRowContext(ctx, q, room.ID, room.UserA, room.UserB, room.CreatedAt).Scan(
		&out.ID,
		&out.UserA,
		&out.UserB,
		&out.CreatedAt,
		&out.LastMessageAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PrivateRoomPostgres) FindByID(ctx context.Context, id string) (*model.PrivateRoom, error) {
	const q = `SELECT id, user_a, user_b, created_at, last_message_at FROM private_rooms WHERE id = $1`
	var out model.PrivateRoom
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&out.ID,
		&out.UserA,
		&out.UserB,
		&out.CreatedAt,
		&out.LastMessageAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PrivateRoomPostgres) Touch(ctx context.Context, id string, at time.Time) error {
	const q = `
		UPDATE private_rooms
		SET last_message_at = GREATEST(COALESCE(last_message_at, $2), $2)
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, q, id, at)
	return err
}

// unreadExpr counts messages from others newer than the caller's read marker; rr is the LEFT JOINed marker.
const unreadExpr = `(
			SELECT COUNT(*) FROM chat_messages m
			WHERE m.room = pr.id
			  AND m.user_id <> $1
			  AND (rr.last_read_at IS NULL OR m.created_at > rr.last_read_at)
		)`

func (r *PrivateRoomPostgres) Conversations(ctx context.Context, userID string) ([]model.DMConversation, error) {
	const q = `
		SELECT pr.id, pr.last_message_at, u.id, u.name, u.role, ` + unreadExpr + `
		FROM private_rooms pr
		JOIN users u ON u.id = CASE WHEN pr.user_a = $1 THEN pr.user_b ELSE pr.user_a END
		LEFT JOIN room_reads rr ON rr.room = pr.id AND rr.user_id = $1
		WHERE pr.user_a = $1 OR pr.user_b = $1
		ORDER BY pr.last_message_at DESC NULLS LAST, pr.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DMConversation, 0)
	for rows.Next() {
		var c model.DMConversation
		if err := rows.Scan(
			&c.Room,
			&c.LastMessageAt,
			&c.Peer.ID,
			&c.Peer.Name,
			&c.Peer.Role,
			&c.Unread,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// MarkRead places the marker at the latest message in the room when that is later than at,
// so messages stamped by the database clock never count as unread afterwards.
func (r *PrivateRoomPostgres) MarkRead(ctx context.Context, room, userID string, at time.Time) error {
	const q = `
		INSERT INTO room_reads (room, user_id, last_read_at)
		VALUES ($1, $2, GREATEST($3, COALESCE((SELECT MAX(created_at) FROM chat_messages WHERE room = $1), $3)))
		ON CONFLICT (room, user_id) DO UPDATE
		SET last_read_at = GREATEST(room_reads.last_read_at, EXCLUDED.last_read_at)
	`
	_, err := r.db.ExecContext(ctx, q, room, userID, at)
	return err
}

func (r *PrivateRoomPostgres) UnreadTotal(ctx context.Context, userID string) (int, error) {
	const q = `
		SELECT COALESCE(SUM(` + unreadExpr + `), 0)
		FROM private_rooms pr
		LEFT JOIN room_reads rr ON rr.room = pr.id AND rr.user_id = $1
		WHERE pr.user_a = $1 OR pr.user_b = $1
	`
	var total int
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
