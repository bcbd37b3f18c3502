// Package blob хранит содержимое файлов. Запись в БД знает только непрозрачный ref.
package blob

import (
	"GophShare/internal/config"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound блоба с таким ref нет.
var ErrNotFound = errors.New("blob not found")

// Store контракт blob-хранилища.
type Store interface {
	// Put сохраняет байты и возвращает новый ref.
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	// AccessURL возвращает ссылку на скачивание, ограниченную по времени.
	AccessURL(ctx context.Context, ref string) (string, error)
	// Delete удаляет блоб. Отсутствующий ref не ошибка.
	Delete(ctx context.Context, ref string) error
}

// Opener реализуют локальные хранилища, содержимое которых отдаёт сам сервер через /blobs/{token}.
type Opener interface {
	Open(ctx context.Context, ref string) ([]byte, error)
}

// New создаёт хранилище по cfg.BlobStore. signer подписывает ссылки локальных хранилищ.
func New(ctx context.Context, cfg *config.Config, signer *URLSigner) (Store, error) {
	switch cfg.BlobStore {
	case "memory":
		return NewMemoryStore(signer), nil
	case "fs":
		return NewFSStore(cfg.BlobDir, signer)
	case "badger":
		return NewBadgerStore(cfg.BlobDir, signer)
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			KeyPrefix:       cfg.S3KeyPrefix,
			URLTTL:          cfg.BlobURLTTL,
		})
	default:
		return nil, fmt.Errorf("unknown blob store %q", cfg.BlobStore)
	}
}

func newRef() string {
	return uuid.NewString()
}

// checkRef не даёт подсунуть путь вместо ref.
func checkRef(ref string) error {
	if _, err := uuid.Parse(ref); err != nil {
		return ErrNotFound
	}
	return nil
}
