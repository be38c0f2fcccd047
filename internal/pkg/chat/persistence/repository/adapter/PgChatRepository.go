package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
)

var errNilPool = errors.New("PgChatRepository: nil pool")

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

const messageColumns = `id, room_id, user_id, user_name, text, attachment_id, attachment_mime, attachment_bytes, attachment_url, ts, edited`

func (r *PgChatRepository) EnsureRoom(ctx context.Context, roomID string) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO rooms (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, roomID)
	return errors.Wrap(err, "ensure room")
}

func (r *PgChatRepository) IsMember(ctx context.Context, roomID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)`,
		roomID, userID,
	).Scan(&ok)
	if err != nil {
		return false, errors.Wrap(err, "is member")
	}
	return ok, nil
}

func (r *PgChatRepository) BootstrapFirstMember(ctx context.Context, roomID string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	var granted bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockRoom(ctx, tx, roomID); err != nil {
			return err
		}
		// The row lock serializes first joiners; this statement runs on a fresh
		// snapshot taken after any competing transaction committed.
		tag, err := tx.Exec(ctx, `
			INSERT INTO room_members (room_id, user_id)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1)
		`, roomID, userID)
		if err != nil {
			return err
		}
		granted = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "bootstrap first member")
	}
	return granted, nil
}

func (r *PgChatRepository) GrantMembership(ctx context.Context, roomID string, userIDs []string) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	if len(userIDs) == 0 {
		return nil
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockRoom(ctx, tx, roomID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO room_members (room_id, user_id)
			SELECT $1, u FROM unnest($2::text[]) AS u
			ON CONFLICT (room_id, user_id) DO NOTHING
		`, roomID, userIDs)
		return err
	})
	return errors.Wrap(err, "grant membership")
}

func lockRoom(ctx context.Context, tx pgx.Tx, roomID string) error {
	if _, err := tx.Exec(ctx, `INSERT INTO rooms (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, roomID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `SELECT 1 FROM rooms WHERE id = $1 FOR UPDATE`, roomID)
	return err
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message, rec chat.OutboxRecord) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	var (
		attID, attMime, attURL *string
		attBytes               *int64
	)
	if a := m.Attachment; a != nil {
		attID, attMime, attURL, attBytes = &a.ID, &a.Mime, &a.URL, &a.Bytes
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO messages (`+messageColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false)
		`, m.ID, m.RoomID, m.UserID, m.UserName, m.Text, attID, attMime, attBytes, attURL, m.TS); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO message_outbox (id, kind, payload, created_at)
			VALUES ($1, $2, $3::jsonb, $4)
		`, rec.ID, rec.Kind, string(rec.Payload), rec.CreatedAt)
		return err
	})
	return errors.Wrap(err, "save message")
}

func (r *PgChatRepository) GetMessage(ctx context.Context, messageID string) (*chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, messageID)
	if err != nil {
		return nil, errors.Wrap(err, "get message")
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, errors.Wrap(err, "get message")
	}
	if len(msgs) == 0 {
		return nil, repository.ErrNotFound
	}
	if err := r.hydrate(ctx, msgs); err != nil {
		return nil, err
	}
	return &msgs[0], nil
}

func (r *PgChatRepository) ListMessages(ctx context.Context, roomID string, beforeID string, limit int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if beforeID == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT `+messageColumns+` FROM messages
			WHERE room_id = $1
			ORDER BY id DESC
			LIMIT $2
		`, roomID, limit)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+messageColumns+` FROM messages
			WHERE room_id = $1 AND id < $3
			ORDER BY id DESC
			LIMIT $2
		`, roomID, limit, beforeID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	if err := r.hydrate(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *PgChatRepository) SearchMessages(ctx context.Context, roomID string, query string, limit int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 50
	}
	// matches messages_text_fts_idx
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE room_id = $1 AND to_tsvector('simple', text) @@ plainto_tsquery('simple', $2)
		ORDER BY id DESC
		LIMIT $3
	`, roomID, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "search messages")
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, errors.Wrap(err, "search messages")
	}
	if err := r.hydrate(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *PgChatRepository) UpdateMessageText(ctx context.Context, messageID string, userID string, text string, minTS int64) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET text = $3, edited = true
		WHERE id = $1 AND user_id = $2 AND ts > $4
	`, messageID, userID, text, minTS)
	if err != nil {
		return false, errors.Wrap(err, "update message text")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgChatRepository) ToggleReaction(ctx context.Context, messageID string, emoji string, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	var added bool
	err := r.pool.QueryRow(ctx, `
		WITH removed AS (
			DELETE FROM message_reactions
			WHERE message_id = $1 AND emoji = $2 AND user_id = $3
			RETURNING 1
		), inserted AS (
			INSERT INTO message_reactions (message_id, emoji, user_id)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (SELECT 1 FROM removed)
			ON CONFLICT DO NOTHING
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM inserted)
	`, messageID, emoji, userID).Scan(&added)
	if err != nil {
		return false, errors.Wrap(err, "toggle reaction")
	}
	return added, nil
}

func (r *PgChatRepository) AddDelivery(ctx context.Context, messageID string, userID string) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	var count int
	// The outer count runs on the statement snapshot, so the fresh row is added explicitly.
	err := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO message_deliveries (message_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
			RETURNING 1
		)
		SELECT (SELECT count(*) FROM message_deliveries WHERE message_id = $1)
		     + (SELECT count(*) FROM inserted)
	`, messageID, userID).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "add delivery")
	}
	return count, nil
}

func (r *PgChatRepository) MarkRead(ctx context.Context, rs chat.ReadState) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errNilPool
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO room_read_state (room_id, user_id, last_read_ts, last_read_message_id, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id, user_id) DO UPDATE
		SET last_read_ts = EXCLUDED.last_read_ts,
		    last_read_message_id = EXCLUDED.last_read_message_id,
		    updated_at = EXCLUDED.updated_at
		WHERE (room_read_state.last_read_ts, room_read_state.last_read_message_id)
		    < (EXCLUDED.last_read_ts, EXCLUDED.last_read_message_id)
	`, rs.RoomID, rs.UserID, rs.LastReadTS, rs.LastReadMessageID, rs.UpdatedAt)
	if err != nil {
		return false, errors.Wrap(err, "mark read")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgChatRepository) GetReadState(ctx context.Context, roomID string, userID string) (*chat.ReadState, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	var rs chat.ReadState
	err := r.pool.QueryRow(ctx, `
		SELECT room_id, user_id, last_read_ts, last_read_message_id, updated_at
		FROM room_read_state
		WHERE room_id = $1 AND user_id = $2
	`, roomID, userID).Scan(&rs.RoomID, &rs.UserID, &rs.LastReadTS, &rs.LastReadMessageID, &rs.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get read state")
	}
	return &rs, nil
}

func (r *PgChatRepository) CountUnread(ctx context.Context, roomID string, userID string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM messages m
		LEFT JOIN room_read_state rs ON rs.room_id = m.room_id AND rs.user_id = $2
		WHERE m.room_id = $1
		  AND m.user_id <> $2
		  AND (rs.room_id IS NULL OR (m.ts, m.id) > (rs.last_read_ts, rs.last_read_message_id))
	`, roomID, userID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "count unread")
	}
	return n, nil
}

func (r *PgChatRepository) DispatchOutbox(ctx context.Context, limit int) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	if limit <= 0 {
		limit = 100
	}
	processed := 0
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, kind, payload
			FROM message_outbox
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`, limit)
		if err != nil {
			return err
		}
		var records []chat.OutboxRecord
		for rows.Next() {
			var rec chat.OutboxRecord
			if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Payload); err != nil {
				rows.Close()
				return err
			}
			records = append(records, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		ids := make([]string, 0, len(records))
		for _, rec := range records {
			if rec.Kind == chat.OutboxKindMessageSent {
				var p chat.MessageSentPayload
				if err := json.Unmarshal(rec.Payload, &p); err != nil {
					return errors.Wrapf(err, "outbox record %s", rec.ID)
				}
				if _, err := tx.Exec(ctx, `
					UPDATE rooms
					SET message_count = message_count + 1,
					    last_message_at = GREATEST(COALESCE(last_message_at, $2::timestamptz), $2::timestamptz)
					WHERE id = $1
				`, p.RoomID, time.UnixMilli(p.TS)); err != nil {
					return err
				}
			}
			ids = append(ids, rec.ID)
		}
		if len(ids) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE message_outbox SET processed_at = now() WHERE id = ANY($1)`, ids); err != nil {
			return err
		}
		processed = len(ids)
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "dispatch outbox")
	}
	return processed, nil
}

func (r *PgChatRepository) PendingOutbox(ctx context.Context) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM message_outbox WHERE processed_at IS NULL`).Scan(&n)
	return n, errors.Wrap(err, "pending outbox")
}

func (r *PgChatRepository) PruneDeliveries(ctx context.Context, before time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM message_deliveries WHERE delivered_at < $1`, before)
	if err != nil {
		return 0, errors.Wrap(err, "prune deliveries")
	}
	return tag.RowsAffected(), nil
}

// hydrate loads reaction and delivery sets for msgs in two round trips.
func (r *PgChatRepository) hydrate(ctx context.Context, msgs []chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]string, len(msgs))
	index := make(map[string]*chat.Message, len(msgs))
	for i := range msgs {
		ids[i] = msgs[i].ID
		index[msgs[i].ID] = &msgs[i]
	}

	rows, err := r.pool.Query(ctx, `
		SELECT message_id, emoji, user_id FROM message_reactions
		WHERE message_id = ANY($1)
		ORDER BY message_id, emoji, user_id
	`, ids)
	if err != nil {
		return errors.Wrap(err, "load reactions")
	}
	for rows.Next() {
		var re chat.Reaction
		if err := rows.Scan(&re.MessageID, &re.Emoji, &re.UserID); err != nil {
			rows.Close()
			return errors.Wrap(err, "scan reaction")
		}
		if m := index[re.MessageID]; m != nil {
			m.Reactions.AddReaction(re.Emoji, re.UserID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "load reactions")
	}

	rows, err = r.pool.Query(ctx, `
		SELECT message_id, user_id FROM message_deliveries
		WHERE message_id = ANY($1)
		ORDER BY message_id, user_id
	`, ids)
	if err != nil {
		return errors.Wrap(err, "load deliveries")
	}
	defer rows.Close()
	for rows.Next() {
		var messageID, userID string
		if err := rows.Scan(&messageID, &userID); err != nil {
			return errors.Wrap(err, "scan delivery")
		}
		if m := index[messageID]; m != nil {
			m.DeliveredBy = append(m.DeliveredBy, userID)
		}
	}
	return errors.Wrap(rows.Err(), "load deliveries")
}

func scanMessages(rows pgx.Rows) ([]chat.Message, error) {
	defer rows.Close()
	var msgs []chat.Message
	for rows.Next() {
		var (
			m                      chat.Message
			attID, attMime, attURL *string
			attBytes               *int64
		)
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.UserName, &m.Text, &attID, &attMime, &attBytes, &attURL, &m.TS, &m.Edited); err != nil {
			return nil, err
		}
		if attID != nil {
			m.Attachment = &chat.Attachment{ID: *attID}
			if attMime != nil {
				m.Attachment.Mime = *attMime
			}
			if attBytes != nil {
				m.Attachment.Bytes = *attBytes
			}
			if attURL != nil {
				m.Attachment.URL = *attURL
			}
		}
		m.Reactions = chat.Reactions{}
		m.DeliveredBy = []string{}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}
