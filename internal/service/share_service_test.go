package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"1h", time.Hour, true},
		{"36h", 36 * time.Hour, true},
		{"1d", 24 * time.Hour, true},
		{"30d", 30 * 24 * time.Hour, true},
		{"0d", 0, false},
		{"", 0, false},
		{"1w", 0, false},
		{"1D", 0, false},
		{"-1d", 0, false},
		{"1.5h", 0, false},
		{" 1d", 0, false},
		{"99999999999999999999d", 0, false},
		{"9999999999d", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDuration(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Некорректная длительность сейчас молча превращается в 7 дней.
// Поведение под вопросом: возможно, это должно быть ошибкой валидации.
func TestShareService_IssueMalformedDurationFallsBack_UnderReview(t *testing.T) {
	env := newTestEnv(t)
	s := env.shareService()
	owner := env.user(t, "a@example.com")
	docs := mustCreate(t, env.folderService(), owner, "Docs", nil)

	for _, d := range []string{"", "soon", "0h", "7 days"} {
		link, err := s.Issue(context.Background(), owner, docs.ID, d)
		require.NoError(t, err)
		assert.Equal(t, env.now.Add(7*24*time.Hour), link.ExpiresAt, d)
	}
}

func TestShareService_IssueResolve(t *testing.T) {
	env := newTestEnv(t)
	s := env.shareService()
	ctx := context.Background()
	owner := env.user(t, "a@example.com")
	other := env.user(t, "b@example.com")
	docs := mustCreate(t, env.folderService(), owner, "Docs", nil)

	link, err := s.Issue(ctx, owner, docs.ID, "2h")
	require.NoError(t, err)
	assert.Equal(t, env.now.Add(2*time.Hour), link.ExpiresAt)
	assert.True(t, link.ExpiresAt.After(link.CreatedAt))
	assert.Equal(t, "http://share.test/s/"+link.Token, link.URL)

	raw, err := base64.RawURLEncoding.DecodeString(link.Token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	other2, err := s.Issue(ctx, owner, docs.ID, "2h")
	require.NoError(t, err)
	assert.NotEqual(t, link.Token, other2.Token)

	_, err = s.Issue(ctx, other, docs.ID, "1d")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.Issue(ctx, owner, uuid.NewString(), "1d")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Resolve(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, docs.ID, got.FolderID)

	// граница включительно
	env.now = link.ExpiresAt.Add(-time.Nanosecond)
	_, err = s.Resolve(ctx, link.Token)
	assert.NoError(t, err)
	env.now = link.ExpiresAt
	_, err = s.Resolve(ctx, link.Token)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = s.Resolve(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShareService_RevokeListPurge(t *testing.T) {
	env := newTestEnv(t)
	s := env.shareService()
	ctx := context.Background()
	owner := env.user(t, "a@example.com")
	other := env.user(t, "b@example.com")
	folders := env.folderService()
	docs := mustCreate(t, folders, owner, "Docs", nil)
	pics := mustCreate(t, folders, owner, "Pics", nil)
	foreign := mustCreate(t, folders, other, "Foreign", nil)

	a, err := s.Issue(ctx, owner, docs.ID, "1h")
	require.NoError(t, err)
	env.now = env.now.Add(time.Minute)
	b, err := s.Issue(ctx, owner, pics.ID, "3d")
	require.NoError(t, err)
	_, err = s.Issue(ctx, other, foreign.ID, "1d")
	require.NoError(t, err)

	list, err := s.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.True(t, strings.HasSuffix(list[1].URL, a.Token))

	assert.ErrorIs(t, s.Revoke(ctx, other, a.ID), ErrForbidden)
	assert.ErrorIs(t, s.Revoke(ctx, owner, uuid.NewString()), ErrNotFound)

	require.NoError(t, s.Revoke(ctx, owner, b.ID))
	_, err = s.Resolve(ctx, b.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Revoke(ctx, owner, b.ID), ErrNotFound)

	env.now = env.now.Add(2 * time.Hour)
	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = s.Resolve(ctx, a.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShareService_Scenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	folders := env.folderService()
	files := env.fileService(defaultPolicy())
	shares := env.shareService()
	public := NewPublicService(shares, env.folders, env.files, env.blobs, env.logger)
	owner := env.user(t, "a@example.com")

	docs := mustCreate(t, folders, owner, "Docs", nil)
	y2024 := mustCreate(t, folders, owner, "2024", docs)
	report := make([]byte, 10<<20)
	_, err := files.Attach(ctx, owner, &y2024.ID, []Upload{{Name: "report.pdf", MimeType: "application/pdf", Data: report}})
	require.NoError(t, err)

	link, err := shares.Issue(ctx, owner, y2024.ID, "1d")
	require.NoError(t, err)

	view, err := public.Open(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "2024", view.Folder.Name)
	require.Len(t, view.Folder.Files, 1)
	assert.Equal(t, "report.pdf", view.Folder.Files[0].Name)
	assert.EqualValues(t, 10<<20, view.Folder.Files[0].Size)

	env.now = env.now.Add(25 * time.Hour)
	_, err = shares.Resolve(ctx, link.Token)
	assert.ErrorIs(t, err, ErrExpired)
	_, err = public.Open(ctx, link.Token)
	assert.ErrorIs(t, err, ErrExpired)

	// перенос Docs внутрь Docs/2024 запрещён
	_, err = folders.Update(ctx, owner, docs.ID, FolderUpdate{ParentID: &y2024.ID})
	assert.ErrorIs(t, err, ErrCircularReference)
}

func TestShareService_FallbackLoggedAsWarning(t *testing.T) {
	env := newTestEnv(t)
	core, logs := observer.New(zapcore.WarnLevel)
	env.logger = zap.New(core).Sugar()
	owner := env.user(t, "a@example.com")
	docs := mustCreate(t, env.folderService(), owner, "Docs", nil)

	_, err := env.shareService().Issue(context.Background(), owner, docs.ID, "soon")
	require.NoError(t, err)

	entries := logs.FilterMessage("share duration fallback").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "soon", entries[0].ContextMap()["duration"])
}

func TestShareService_RunPurge(t *testing.T) {
	env := newTestEnv(t)
	core, logs := observer.New(zapcore.InfoLevel)
	env.logger = zap.New(core).Sugar()
	owner := env.user(t, "a@example.com")
	docs := mustCreate(t, env.folderService(), owner, "Docs", nil)
	s := env.shareService()

	link, err := s.Issue(context.Background(), owner, docs.ID, "1h")
	require.NoError(t, err)
	env.now = env.now.Add(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.RunPurge(ctx, 10*time.Millisecond)
		close(stopped)
	}()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("expired shares purged").Len() > 0
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-stopped

	// одна запись на один удалённый пакет ссылок
	assert.Equal(t, 1, logs.FilterMessage("expired shares purged").Len())
	_, err = s.Resolve(context.Background(), link.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}
