package service

import (
	"GophShare/internal/repo"
	"context"
	"errors"
	"fmt"
)

// Виды ошибок движка. Слой API сопоставляет их со статусами.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateName     = errors.New("name already exists in this location")
	ErrSelfParent        = errors.New("folder cannot be its own parent")
	ErrCircularReference = errors.New("folder cannot be moved into its own subtree")
	ErrNotEmpty          = errors.New("folder is not empty")
	ErrExpired           = errors.New("share link expired")
	ErrValidation        = errors.New("validation error")
	ErrUnavailable       = errors.New("storage unavailable, retry later")
	ErrPartialFailure    = errors.New("some files were not attached")
)

// NotEmptyError отказ в нерекурсивном удалении непустой папки.
type NotEmptyError struct {
	Folders int64 `json:"folders"`
	Files   int64 `json:"files"`
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("folder is not empty: %d folders, %d files", e.Folders, e.Files)
}

func (e *NotEmptyError) Is(target error) bool { return target == ErrNotEmpty }

// FileFailure файл пакета, который не удалось прикрепить.
type FileFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// PartialFailureError результат пакетной загрузки, в которой часть файлов не прошла.
type PartialFailureError struct {
	Attached []AttachedFile
	Failures []FileFailure
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d files failed", len(e.Failures), len(e.Attached)+len(e.Failures))
}

func (e *PartialFailureError) Is(target error) bool { return target == ErrPartialFailure }

// storeErr переводит ошибки хранилища в виды ошибок движка.
// Уже переведённая ErrUnavailable возвращается как есть.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnavailable):
		return err
	case repo.IsNotFound(err), repo.IsInvalidID(err):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), repo.IsRetryable(err):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case repo.IsUniqueViolation(err):
		return ErrDuplicateName
	}
	return err
}

// inTx выполняет fn в транзакции. Ошибки открытия и фиксации транзакции
// (истёкший контекст, SQLITE_BUSY, 40001 на COMMIT) переводятся так же, как ошибки запросов.
func inTx(ctx context.Context, tx repo.TxManager, fn func(ctx context.Context) error) error {
	return storeErr(tx.WithinTx(ctx, fn))
}

// blobErr то же для blob-хранилища.
func blobErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: blob store: %w", ErrUnavailable, err)
}
