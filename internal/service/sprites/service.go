package sprites

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"speakup-api/internal/apperr"
	"speakup-api/internal/observability/logging"
	obsmetrics "speakup-api/internal/observability/metrics"
)

// urlExpiry is how long a signed sprite URL stays valid.
const urlExpiry = time.Hour

// maxNameLength caps sanitized file and sprite names.
const maxNameLength = 50

// allowedFormats maps accepted image content types to their extension.
var allowedFormats = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
}

// Config holds workflow settings.
type Config struct {
	PendingBucket  string
	ApprovedBucket string
	MaxBytes       int64
}

// Service implements the sprite moderation workflow over an ObjectStore.
type Service struct {
	store   ObjectStore
	cfg     Config
	log     zerolog.Logger
	metrics *obsmetrics.Metrics
	now     func() time.Time
}

// New creates the workflow service.
func New(store ObjectStore, cfg Config, m *obsmetrics.Metrics) *Service {
	return &Service{
		store:   store,
		cfg:     cfg,
		log:     logging.WithComponent("sprites"),
		metrics: m,
		now:     time.Now,
	}
}

// SavePending stores a child's upload in the pending bucket and returns the
// generated filename. Filenames carry a timestamp plus a short unique token
// so rapid uploads from the same user never collide.
func (s *Service) SavePending(ctx context.Context, userID string, data []byte, contentType, originalName string) (filename string, err error) {
	defer func() { s.metrics.RecordSpriteOperation("upload", err) }()

	if strings.TrimSpace(userID) == "" {
		return "", apperr.New(apperr.ReasonBadRequest, "user_id is required")
	}
	if err := s.validateImage(contentType, len(data)); err != nil {
		return "", err
	}

	ext := allowedFormats[contentType]
	stem := fmt.Sprintf("%s_%s", s.now().Format("20060102_150405"), uuid.NewString()[:8])
	if clean := sanitize(originalName, "._- ", maxNameLength); clean != "" {
		filename = stem + "_" + clean
	} else {
		filename = stem + "_sprite"
	}
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}

	if err := s.store.Put(ctx, s.cfg.PendingBucket, userID+"/"+filename, data, contentType); err != nil {
		return "", err
	}

	s.log.Info().
		Str("userId", userID).
		Str("filename", filename).
		Int("bytes", len(data)).
		Msg("Sprite uploaded for review")
	return filename, nil
}

// ListPending lists pending uploads grouped by user. An empty userID lists
// every user's queue.
func (s *Service) ListPending(ctx context.Context, userID string) (map[string][]string, error) {
	prefix := ""
	if userID != "" {
		prefix = userID + "/"
	}

	keys, err := s.store.List(ctx, s.cfg.PendingBucket, prefix)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	if userID != "" {
		result[userID] = []string{}
	}
	for _, key := range keys {
		user, name, ok := strings.Cut(key, "/")
		if !ok || name == "" {
			continue
		}
		result[user] = append(result[user], name)
	}
	return result, nil
}

// Approve publishes the administrator's final image into the approved
// bucket under the given sprite name. When pendingName names the reviewed
// original, it must exist and is removed after publishing; removal failures
// only log, since the approval itself already succeeded.
func (s *Service) Approve(ctx context.Context, userID, spriteName string, data []byte, contentType, pendingName string) (filename string, err error) {
	defer func() { s.metrics.RecordSpriteOperation("approve", err) }()

	if strings.TrimSpace(userID) == "" {
		return "", apperr.New(apperr.ReasonBadRequest, "user_id is required")
	}
	if err := s.validateImage(contentType, len(data)); err != nil {
		return "", err
	}
	clean := sanitize(spriteName, "_-", maxNameLength)
	if clean == "" {
		return "", apperr.New(apperr.ReasonBadRequest, "sprite_name has no usable characters")
	}
	filename = clean + allowedFormats[contentType]

	from := StateUnknown
	if pendingName != "" {
		st, err := s.ReviewState(ctx, userID, pendingName)
		if err != nil {
			return "", err
		}
		if st != StatePending {
			return "", apperr.Newf(apperr.ReasonNotFound, "pending sprite %s not found", pendingName)
		}
		from = st
	} else if approved, err := s.exists(ctx, s.cfg.ApprovedBucket, userID, filename); err != nil {
		return "", err
	} else if approved {
		from = StateApproved // re-approval overwrites
	}
	if _, err := Transition(from, StateApproved); err != nil {
		return "", apperr.Wrap(err, apperr.ReasonBadRequest, "approval not permitted")
	}

	if err := s.store.Put(ctx, s.cfg.ApprovedBucket, userID+"/"+filename, data, contentType); err != nil {
		return "", err
	}

	if pendingName != "" {
		if err := s.store.Remove(ctx, s.cfg.PendingBucket, userID+"/"+pendingName); err != nil {
			s.log.Warn().Err(err).
				Str("userId", userID).
				Str("pending", pendingName).
				Msg("Could not remove pending original after approval")
		}
	}

	s.log.Info().
		Str("userId", userID).
		Str("filename", filename).
		Str("pending", pendingName).
		Msg("Sprite approved")
	return filename, nil
}

// ListApproved lists a user's approved sprite names.
func (s *Service) ListApproved(ctx context.Context, userID string) ([]string, error) {
	keys, err := s.store.List(ctx, s.cfg.ApprovedBucket, userID+"/")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if name := strings.TrimPrefix(key, userID+"/"); name != "" && name != key {
			names = append(names, name)
		}
	}
	return names, nil
}

// SpriteURL returns a signed download URL for a sprite.
func (s *Service) SpriteURL(ctx context.Context, userID, filename string, pending bool) (string, error) {
	return s.store.SignedURL(ctx, s.bucket(pending), userID+"/"+filename, urlExpiry)
}

// GetSprite downloads sprite bytes directly. Used as the fallback when URL
// signing is unavailable.
func (s *Service) GetSprite(ctx context.Context, userID, filename string, pending bool) ([]byte, error) {
	return s.store.Get(ctx, s.bucket(pending), userID+"/"+filename)
}

// DeletePending rejects a pending sprite: it is removed without approval.
func (s *Service) DeletePending(ctx context.Context, userID, filename string) (err error) {
	defer func() { s.metrics.RecordSpriteOperation("reject", err) }()

	pending, err := s.exists(ctx, s.cfg.PendingBucket, userID, filename)
	if err != nil {
		return err
	}
	if !pending {
		return apperr.Newf(apperr.ReasonNotFound, "pending sprite %s not found", filename)
	}
	if _, err := Transition(StatePending, StateRejected); err != nil {
		return apperr.Wrap(err, apperr.ReasonBadRequest, "rejection not permitted")
	}

	if err := s.store.Remove(ctx, s.cfg.PendingBucket, userID+"/"+filename); err != nil {
		return err
	}

	s.log.Info().
		Str("userId", userID).
		Str("filename", filename).
		Msg("Pending sprite rejected")
	return nil
}

// ReviewState derives a sprite's workflow state from bucket membership.
func (s *Service) ReviewState(ctx context.Context, userID, filename string) (State, error) {
	approved, err := s.exists(ctx, s.cfg.ApprovedBucket, userID, filename)
	if err != nil {
		return StateUnknown, err
	}
	if approved {
		return StateApproved, nil
	}

	pending, err := s.exists(ctx, s.cfg.PendingBucket, userID, filename)
	if err != nil {
		return StateUnknown, err
	}
	if pending {
		return StatePending, nil
	}
	return StateUnknown, nil
}

func (s *Service) bucket(pending bool) string {
	if pending {
		return s.cfg.PendingBucket
	}
	return s.cfg.ApprovedBucket
}

func (s *Service) exists(ctx context.Context, bucket, userID, filename string) (bool, error) {
	key := userID + "/" + filename
	keys, err := s.store.List(ctx, bucket, key)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

// validateImage enforces the format allowlist and the byte ceiling.
func (s *Service) validateImage(contentType string, size int) error {
	if _, ok := allowedFormats[contentType]; !ok {
		return apperr.Newf(apperr.ReasonBadRequest,
			"unsupported image format %q (allowed: png, jpeg, webp)", contentType)
	}
	if size == 0 {
		return apperr.New(apperr.ReasonBadRequest, "empty image upload")
	}
	if s.cfg.MaxBytes > 0 && int64(size) > s.cfg.MaxBytes {
		return apperr.Newf(apperr.ReasonPayloadTooLarge,
			"image too large: %d bytes (max %d)", size, s.cfg.MaxBytes)
	}
	return nil
}

// sanitize keeps letters, digits and the extra characters, truncated to max
// runes.
func sanitize(name, extra string, max int) string {
	var out []rune
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(extra, r) {
			out = append(out, r)
		}
		if len(out) == max {
			break
		}
	}
	return strings.TrimSpace(string(out))
}

// MediaTypeFor maps a sprite filename to its content type for serving.
func MediaTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
