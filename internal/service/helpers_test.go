package service

import (
	"GophShare/internal/blob"
	"GophShare/internal/config"
	"GophShare/internal/model"
	"GophShare/internal/repo"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// testEnv сервисы поверх отдельной in-memory SQLite.
type testEnv struct {
	db      *gorm.DB
	tx      repo.TxManager
	users   repo.UserRepository
	folders repo.FolderRepository
	files   repo.FileRepository
	shares  repo.ShareRepository
	blobs   *blob.MemoryStore
	logger  *zap.SugaredLogger
	now     time.Time
}

func (e *testEnv) clock() time.Time { return e.now }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))

	return &testEnv{
		db:      db,
		tx:      repo.NewTxManager(db),
		users:   repo.NewUserRepository(db),
		folders: repo.NewFolderRepository(db),
		files:   repo.NewFileRepository(db),
		shares:  repo.NewShareRepository(db),
		blobs:   blob.NewMemoryStore(blob.NewURLSigner("secret", "http://files.test", time.Minute)),
		logger:  zap.NewNop().Sugar(),
		now:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (e *testEnv) user(t *testing.T, email string) int64 {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &model.User{Email: email, Password: "hash"})
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) folderService() *FolderService {
	s := NewFolderService(e.tx, e.folders, e.files, e.shares, e.blobs, e.logger)
	s.now = e.clock
	return s
}

func (e *testEnv) fileService(policy config.UploadPolicy) *FileService {
	return e.fileServiceWith(e.blobs, policy)
}

func (e *testEnv) fileServiceWith(store blob.Store, policy config.UploadPolicy) *FileService {
	s := NewFileService(e.tx, e.files, e.folders, store, policy, e.logger)
	s.now = e.clock
	return s
}

func (e *testEnv) shareService() *ShareService {
	return NewShareService(e.tx, e.shares, e.folders, e.logger, ShareConfig{
		PublicURL:  "http://share.test",
		DefaultTTL: 7 * 24 * time.Hour,
		Clock:      func() time.Time { return e.now },
	})
}

func defaultPolicy() config.UploadPolicy {
	return config.UploadPolicy{MaxFileSize: 20 << 20, MaxBatchFiles: 5}
}

func mustCreate(t *testing.T, s *FolderService, owner int64, name string, parent *model.Folder) *model.Folder {
	t.Helper()
	var pid *string
	if parent != nil {
		pid = &parent.ID
	}
	f, err := s.Create(context.Background(), owner, name, pid)
	require.NoError(t, err)
	return f
}

func ptr[T any](v T) *T { return &v }

// mockBlobStore мок blob.Store для путей с ошибками.
type mockBlobStore struct{ mock.Mock }

func (m *mockBlobStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) AccessURL(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

var _ blob.Store = (*mockBlobStore)(nil)
