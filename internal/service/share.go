package service

import (
	"GophShare/internal/model"
	"GophShare/internal/repo"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tokenBytes 256 бит случайности на токен.
const tokenBytes = 32

var durationRe = regexp.MustCompile(`^(\d+)([hd])$`)

// ShareConfig настройки выдачи ссылок.
type ShareConfig struct {
	PublicURL  string        // префикс ссылки: <PublicURL>/s/<token>
	DefaultTTL time.Duration // срок при некорректной длительности
	Clock      Clock
}

// ShareService публичные ссылки на поддеревья папок.
// Состояние ссылки вычисляется при чтении: Active до ExpiresAt, затем Expired.
type ShareService struct {
	tx      repo.TxManager
	shares  repo.ShareRepository
	folders repo.FolderRepository
	logger  *zap.SugaredLogger
	cfg     ShareConfig
}

func NewShareService(tx repo.TxManager, shares repo.ShareRepository, folders repo.FolderRepository,
	logger *zap.SugaredLogger, cfg ShareConfig) *ShareService {
	if cfg.Clock == nil {
		cfg.Clock = systemClock
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 7 * 24 * time.Hour
	}
	return &ShareService{tx: tx, shares: shares, folders: folders, logger: logger, cfg: cfg}
}

// IssuedShare ссылка вместе с полным публичным адресом.
type IssuedShare struct {
	model.ShareLink
	URL string `json:"url"`
}

// ParseDuration разбирает "{число}{h|d}". ok=false для всего остального,
// включая ноль и переполнение.
func ParseDuration(s string) (time.Duration, bool) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	unit := time.Hour
	if m[2] == "d" {
		unit = 24 * time.Hour
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// Issue выдаёт ссылку на папку. Некорректная длительность не ошибка:
// подставляется срок по умолчанию.
func (s *ShareService) Issue(ctx context.Context, principalID int64, folderID, duration string) (*IssuedShare, error) {
	ttl, ok := ParseDuration(duration)
	if !ok {
		s.logger.Warnw("share duration fallback", "duration", duration, "default", s.cfg.DefaultTTL)
		ttl = s.cfg.DefaultTTL
	}
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.cfg.Clock()
	link := &model.ShareLink{
		ID:        uuid.NewString(),
		Token:     token,
		FolderID:  folderID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	err = inTx(ctx, s.tx, func(ctx context.Context) error {
		if _, err := authorize(ctx, principalID, folderID, s.folders.GetByID); err != nil {
			return err
		}
		return storeErr(s.shares.Create(ctx, link))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("share issued", "share_id", link.ID, "folder_id", folderID, "expires_at", link.ExpiresAt)
	return s.issued(link), nil
}

func (s *ShareService) issued(link *model.ShareLink) *IssuedShare {
	return &IssuedShare{ShareLink: *link, URL: s.cfg.PublicURL + "/s/" + link.Token}
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Resolve находит активную ссылку по токену: ErrNotFound, если её нет, ErrExpired с момента ExpiresAt.
func (s *ShareService) Resolve(ctx context.Context, token string) (*model.ShareLink, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	link, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		return nil, storeErr(err)
	}
	if link.Expired(s.cfg.Clock()) {
		return nil, ErrExpired
	}
	return link, nil
}

// Revoke удаляет ссылку. Права проверяются по владельцу папки, на которую она ведёт.
func (s *ShareService) Revoke(ctx context.Context, principalID int64, shareID string) error {
	return inTx(ctx, s.tx, func(ctx context.Context) error {
		link, err := s.shares.GetByID(ctx, shareID)
		if err != nil {
			return storeErr(err)
		}
		if _, err := authorize(ctx, principalID, link.FolderID, s.folders.GetByID); err != nil {
			return err
		}
		if _, err := s.shares.Delete(ctx, link.ID); err != nil {
			return storeErr(err)
		}
		return nil
	})
}

// List ссылки на все папки владельца, включая истёкшие.
func (s *ShareService) List(ctx context.Context, principalID int64) ([]IssuedShare, error) {
	links, err := s.shares.ListByOwner(ctx, principalID)
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]IssuedShare, 0, len(links))
	for i := range links {
		out = append(out, *s.issued(&links[i]))
	}
	return out, nil
}

// PurgeExpired удаляет истёкшие ссылки. На разрешение токенов не влияет:
// срок всё равно проверяется при чтении.
func (s *ShareService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.shares.DeleteExpired(ctx, s.cfg.Clock())
	if err != nil {
		return 0, storeErr(err)
	}
	if n > 0 {
		s.logger.Infow("expired shares purged", "count", n)
	}
	return n, nil
}

// RunPurge вызывает PurgeExpired раз в interval до отмены ctx.
// Ошибки логируются, цикл продолжается.
func (s *ShareService) RunPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil {
				s.logger.Warnw("share purge failed", "error", err)
			}
		}
	}
}
