// Package media resolves attachment references to stored media metadata.
package media

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
)

// MaxBytes is the largest attachment accepted.
const MaxBytes int64 = 50 * 1024 * 1024

var allowedMime = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"video/mp4":  {},
}

// Allowed reports whether an attachment of this type and size may be sent.
func Allowed(mime string, size int64) bool {
	_, ok := allowedMime[strings.ToLower(mime)]
	return ok && size > 0 && size <= MaxBytes
}

// Resolver looks up an attachment uploaded by userID into roomID.
// It returns nil without error when ref does not resolve.
type Resolver interface {
	ResolveAttachment(ctx context.Context, ref, roomID, userID string) (*chat.Attachment, error)
}

// Record is a stored upload.
type Record struct {
	ID        string
	RoomID    string
	UserID    string
	ObjectKey string
	Mime      string
	Bytes     int64
}

// PgResolver reads uploads from the attachments table.
type PgResolver struct {
	pool    *pgxpool.Pool
	baseURL string
}

func NewPgResolver(pool *pgxpool.Pool, baseURL string) *PgResolver {
	return &PgResolver{pool: pool, baseURL: strings.TrimRight(baseURL, "/")}
}

var _ Resolver = (*PgResolver)(nil)

func (r *PgResolver) ResolveAttachment(ctx context.Context, ref, roomID, userID string) (*chat.Attachment, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `
		SELECT id, room_id, user_id, object_key, mime, bytes
		FROM attachments
		WHERE id = $1 AND room_id = $2 AND user_id = $3
	`, ref, roomID, userID).Scan(&rec.ID, &rec.RoomID, &rec.UserID, &rec.ObjectKey, &rec.Mime, &rec.Bytes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolve attachment")
	}
	return toAttachment(rec, r.baseURL), nil
}

// MemoryResolver serves uploads registered in process memory.
type MemoryResolver struct {
	mu      sync.RWMutex
	baseURL string
	records map[string]Record
}

func NewMemoryResolver(baseURL string) *MemoryResolver {
	return &MemoryResolver{baseURL: strings.TrimRight(baseURL, "/"), records: make(map[string]Record)}
}

var _ Resolver = (*MemoryResolver)(nil)

// Put registers an upload.
func (r *MemoryResolver) Put(rec Record) {
	r.mu.Lock()
	r.records[rec.ID] = rec
	r.mu.Unlock()
}

func (r *MemoryResolver) ResolveAttachment(_ context.Context, ref, roomID, userID string) (*chat.Attachment, error) {
	r.mu.RLock()
	rec, ok := r.records[ref]
	r.mu.RUnlock()
	if !ok || rec.RoomID != roomID || rec.UserID != userID {
		return nil, nil
	}
	return toAttachment(rec, r.baseURL), nil
}

func toAttachment(rec Record, baseURL string) *chat.Attachment {
	if !Allowed(rec.Mime, rec.Bytes) {
		return nil
	}
	url := rec.ObjectKey
	if baseURL != "" {
		url = baseURL + "/" + strings.TrimLeft(rec.ObjectKey, "/")
	}
	return &chat.Attachment{ID: rec.ID, Mime: rec.Mime, Bytes: rec.Bytes, URL: url}
}
