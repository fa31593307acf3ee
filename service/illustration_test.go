package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"astrobook/models"
)

// fakeDrive serves a fixed folder listing from memory
type fakeDrive struct {
	mu        sync.Mutex
	files     []models.IllustrationFile
	data      map[string][]byte // file id -> bytes
	listCalls int
	listErr   error
}

func (d *fakeDrive) ListIllustrations(ctx context.Context, folderID string) ([]models.IllustrationFile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listCalls++
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.files, nil
}

func (d *fakeDrive) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	data, ok := d.data[fileID]
	if !ok {
		return nil, errors.New("download failed")
	}
	return data, nil
}

func TestLocalIllustrationSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	png := pngBytes(t, 4, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "moon.png"), png, 0644))

	source := NewLocalIllustrationSource(dir)

	data, err := source.Fetch(context.Background(), "moon")
	require.NoError(t, err)
	assert.Equal(t, png, data)

	_, err = source.Fetch(context.Background(), "sun")
	assert.ErrorIs(t, err, ErrIllustrationMissing)

	for _, bad := range []string{"", "../moon", "a/b", `a\b`} {
		_, err := source.Fetch(context.Background(), bad)
		assert.Error(t, err, bad)
		assert.NotErrorIs(t, err, ErrIllustrationMissing, bad)
	}
}

func TestCachedIllustrationResolver_ResolvesOnce(t *testing.T) {
	source := newMemorySource(map[string][]byte{"moon": pngBytes(t, 8, 8)})
	resolver := NewCachedIllustrationResolver(source, time.Minute, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	uris := make([]string, 10)
	for i := range uris {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uri, err := resolver.Resolve(context.Background(), 1, "moon")
			assert.NoError(t, err)
			uris[i] = uri
		}()
	}
	wg.Wait()

	for _, uri := range uris {
		assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
		assert.Equal(t, uris[0], uri)
	}

	_, err := resolver.Resolve(context.Background(), 2, "moon")
	require.NoError(t, err)
	assert.LessOrEqual(t, source.count("moon"), 10)

	before := source.count("moon")
	_, err = resolver.Resolve(context.Background(), 3, "moon")
	require.NoError(t, err)
	assert.Equal(t, before, source.count("moon"))

	resolver.Flush()
	_, err = resolver.Resolve(context.Background(), 3, "moon")
	require.NoError(t, err)
	assert.Equal(t, before+1, source.count("moon"))
}

func TestCachedIllustrationResolver_Missing(t *testing.T) {
	resolver := NewCachedIllustrationResolver(newMemorySource(nil), 0, zaptest.NewLogger(t))

	_, err := resolver.Resolve(context.Background(), 9, "stars")

	var missing *models.IllustrationNotFoundError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 9, missing.PageNumber)
	assert.Equal(t, "stars", missing.Name)
}

func TestCachedIllustrationResolver_UndecodableImage(t *testing.T) {
	source := newMemorySource(map[string][]byte{"broken": []byte("not an image")})
	resolver := NewCachedIllustrationResolver(source, 0, zaptest.NewLogger(t))

	_, err := resolver.Resolve(context.Background(), 1, "broken")

	require.Error(t, err)
	var missing *models.IllustrationNotFoundError
	assert.False(t, errors.As(err, &missing))
}

func TestDriveIllustrationSource_Fetch(t *testing.T) {
	png := pngBytes(t, 4, 4)
	drive := &fakeDrive{
		files: []models.IllustrationFile{
			{ID: "id-1", Name: "moon.png", MimeType: "image/png"},
			{ID: "id-2", Name: "moon.jpg", MimeType: "image/jpeg"},
		},
		data: map[string][]byte{"id-1": png},
	}
	source := NewDriveIllustrationSource(drive, "folder", 0, zaptest.NewLogger(t))

	data, err := source.Fetch(context.Background(), "moon")
	require.NoError(t, err)
	assert.Equal(t, png, data)

	_, err = source.Fetch(context.Background(), "sun")
	assert.ErrorIs(t, err, ErrIllustrationMissing)
	assert.Equal(t, 1, drive.listCalls)
}

func TestDriveIllustrationSource_RelistsOnMiss(t *testing.T) {
	drive := &fakeDrive{
		files: []models.IllustrationFile{{ID: "id-1", Name: "moon.png"}},
		data:  map[string][]byte{"id-1": []byte("moon"), "id-2": []byte("sun")},
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := NewDriveIllustrationSource(drive, "folder", 0, zaptest.NewLogger(t))
	source.now = func() time.Time { return now }

	_, err := source.Fetch(context.Background(), "moon")
	require.NoError(t, err)

	drive.mu.Lock()
	drive.files = append(drive.files, models.IllustrationFile{ID: "id-2", Name: "sun.png"})
	drive.mu.Unlock()

	// a miss right after a listing does not hit Drive again
	_, err = source.Fetch(context.Background(), "sun")
	assert.ErrorIs(t, err, ErrIllustrationMissing)
	assert.Equal(t, 1, drive.listCalls)

	now = now.Add(DriveMissRefreshInterval)
	data, err := source.Fetch(context.Background(), "sun")
	require.NoError(t, err)
	assert.Equal(t, []byte("sun"), data)
	assert.Equal(t, 2, drive.listCalls)

	// hits never relist
	_, err = source.Fetch(context.Background(), "moon")
	require.NoError(t, err)
	assert.Equal(t, 2, drive.listCalls)
}

func TestDriveIllustrationSource_ListingExpires(t *testing.T) {
	drive := &fakeDrive{
		files: []models.IllustrationFile{{ID: "id-1", Name: "moon.png"}},
		data:  map[string][]byte{"id-1": []byte("old"), "id-9": []byte("new")},
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := NewDriveIllustrationSource(drive, "folder", time.Hour, zaptest.NewLogger(t))
	source.now = func() time.Time { return now }

	data, err := source.Fetch(context.Background(), "moon")
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)

	drive.mu.Lock()
	drive.files = []models.IllustrationFile{{ID: "id-9", Name: "moon.png"}}
	drive.mu.Unlock()

	now = now.Add(59 * time.Minute)
	data, err = source.Fetch(context.Background(), "moon")
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)

	now = now.Add(time.Minute)
	data, err = source.Fetch(context.Background(), "moon")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
	assert.Equal(t, 2, drive.listCalls)
}

func TestDriveIllustrationSource_ListError(t *testing.T) {
	drive := &fakeDrive{listErr: errors.New("quota")}
	source := NewDriveIllustrationSource(drive, "folder", 0, zaptest.NewLogger(t))

	_, err := source.Fetch(context.Background(), "moon")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIllustrationMissing)
}

func TestIllustrationSyncService_SyncAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.jpg"), []byte("x"), 0644))

	drive := &fakeDrive{
		files: []models.IllustrationFile{
			{ID: "a", Name: "moon.png"},
			{ID: "b", Name: "moon.jpeg"},
			{ID: "c", Name: "existing.png"},
			{ID: "d", Name: "broken.png"},
			{ID: "e", Name: "sun.png"},
		},
		data: map[string][]byte{
			"a": pngBytes(t, 10, 10),
			"b": pngBytes(t, 10, 10),
			"e": pngBytes(t, 2000, 500),
		},
	}

	result, err := NewIllustrationSyncService(drive, zaptest.NewLogger(t)).SyncAll(context.Background(), "folder", dir)

	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 2, result.Downloaded)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "broken.jpg")

	assert.FileExists(t, filepath.Join(dir, "moon.jpg"))
	assert.FileExists(t, filepath.Join(dir, "sun.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "broken.jpg"))

	served, err := NewLocalIllustrationSource(dir).Fetch(context.Background(), "sun")
	require.NoError(t, err)
	assert.NotEmpty(t, served)
}

func TestIllustrationSyncService_ListError(t *testing.T) {
	drive := &fakeDrive{listErr: errors.New("forbidden")}

	_, err := NewIllustrationSyncService(drive, zaptest.NewLogger(t)).SyncAll(context.Background(), "folder", t.TempDir())

	assert.ErrorContains(t, err, "forbidden")
}

// gatedSource blocks every fetch until released, honoring the fetch context
type gatedSource struct {
	data    []byte
	started chan struct{}
	release chan struct{}
	fetches atomic.Int32
}

func (s *gatedSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if s.fetches.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
		return s.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCachedIllustrationResolver_CanceledCallerDoesNotFailOthers(t *testing.T) {
	source := &gatedSource{
		data:    pngBytes(t, 8, 8),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	resolver := NewCachedIllustrationResolver(source, time.Minute, zaptest.NewLogger(t))

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := resolver.Resolve(ctxA, 1, "cover")
		errA <- err
	}()
	<-source.started

	type result struct {
		uri string
		err error
	}
	resB := make(chan result, 1)
	go func() {
		uri, err := resolver.Resolve(context.Background(), 1, "cover")
		resB <- result{uri, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(source.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.True(t, strings.HasPrefix(b.uri, "data:image/jpeg;base64,"))
	assert.Equal(t, int32(1), source.fetches.Load())
}

func TestCachedIllustrationResolver_FetchTimeout(t *testing.T) {
	source := &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
	resolver := NewCachedIllustrationResolver(source, time.Minute, zaptest.NewLogger(t))
	resolver.fetchTimeout = 20 * time.Millisecond

	_, err := resolver.Resolve(context.Background(), 3, "cover")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIllustrationSyncService_RejectsEscapingNames(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "illustrations")
	png := pngBytes(t, 4, 4)
	drive := &fakeDrive{
		files: []models.IllustrationFile{
			{ID: "a", Name: "../../escape.png"},
			{ID: "b", Name: `..\up.png`},
			{ID: "c", Name: "nested/moon.png"},
			{ID: "d", Name: ".png"},
			{ID: "e", Name: "sun.png"},
		},
		data: map[string][]byte{"a": png, "b": png, "c": png, "d": png, "e": png},
	}

	result, err := NewIllustrationSyncService(drive, zaptest.NewLogger(t)).SyncAll(context.Background(), "folder", dir)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Downloaded)
	assert.Len(t, result.Errors, 4)
	assert.FileExists(t, filepath.Join(dir, "sun.jpg"))
	assert.NoFileExists(t, filepath.Join(root, "escape.jpg"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "escape.jpg"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
