package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"astrobook/models"
)

// ErrIllustrationMissing is returned by a source that has no file for a name
var ErrIllustrationMissing = errors.New("illustration missing")

// illustrationExtensions are tried in order when resolving a name to a file
var illustrationExtensions = []string{".jpg", ".jpeg", ".png"}

// IllustrationSource fetches raw illustration bytes by catalog name (file name without extension)
type IllustrationSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// illustrationBaseName strips a known image extension
func illustrationBaseName(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, known := range illustrationExtensions {
		if ext == known {
			return strings.TrimSuffix(fileName, filepath.Ext(fileName))
		}
	}
	return fileName
}

// validIllustrationName rejects empty names and names that could leave the illustrations directory
func validIllustrationName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}

// LocalIllustrationSource reads illustrations from a directory
type LocalIllustrationSource struct {
	dir string
}

// NewLocalIllustrationSource creates a source over dir
func NewLocalIllustrationSource(dir string) *LocalIllustrationSource {
	return &LocalIllustrationSource{dir: dir}
}

// Fetch reads <dir>/<name>.(jpg|jpeg|png)
func (s *LocalIllustrationSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if !validIllustrationName(name) {
		return nil, fmt.Errorf("invalid illustration name %q", name)
	}
	for _, ext := range illustrationExtensions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name+ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read illustration %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%s in %s: %w", name, s.dir, ErrIllustrationMissing)
}

// DriveMissRefreshInterval is the minimum time between listings triggered by a missing name
const DriveMissRefreshInterval = 30 * time.Second

// DriveIllustrationSource resolves illustrations from a Google Drive folder.
// The folder listing is reused until it is older than ttl, and relisted early
// when a name is missing so files added to the folder are picked up.
type DriveIllustrationSource struct {
	drive    DriveServiceInterface
	folderID string
	ttl      time.Duration
	log      *zap.Logger

	mu              sync.Mutex
	index           map[string]string // base name -> file id
	listedAt        time.Time
	refreshInterval time.Duration
	now             func() time.Time
}

// NewDriveIllustrationSource creates a source over a Drive folder. ttl <= 0
// keeps the listing until a missing name forces a refresh.
func NewDriveIllustrationSource(drive DriveServiceInterface, folderID string, ttl time.Duration, log *zap.Logger) *DriveIllustrationSource {
	return &DriveIllustrationSource{
		drive:           drive,
		folderID:        folderID,
		ttl:             ttl,
		log:             log,
		refreshInterval: DriveMissRefreshInterval,
		now:             time.Now,
	}
}

// Fetch downloads the file whose name (without extension) matches name
func (s *DriveIllustrationSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	index, err := s.folderIndex(ctx, false)
	if err != nil {
		return nil, err
	}
	fileID, ok := index[name]
	if !ok {
		if index, err = s.folderIndex(ctx, true); err != nil {
			return nil, err
		}
		if fileID, ok = index[name]; !ok {
			return nil, fmt.Errorf("%s in drive folder %s: %w", name, s.folderID, ErrIllustrationMissing)
		}
	}
	return s.drive.DownloadFile(ctx, fileID)
}

// folderIndex returns the name index, relisting the folder when it expired.
// missed asks for a relist, honored at most once per refreshInterval.
func (s *DriveIllustrationSource) folderIndex(ctx context.Context, missed bool) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		age := s.now().Sub(s.listedAt)
		expired := s.ttl > 0 && age >= s.ttl
		if !expired && (!missed || age < s.refreshInterval) {
			return s.index, nil
		}
	}

	files, err := s.drive.ListIllustrations(ctx, s.folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list illustrations: %w", err)
	}

	index := make(map[string]string, len(files))
	for _, f := range files {
		base := illustrationBaseName(f.Name)
		if _, dup := index[base]; dup {
			s.log.Warn("⚠️  Duplicate illustration name in Drive folder, keeping first", zap.String("name", base))
			continue
		}
		index[base] = f.ID
	}
	s.index = index
	s.listedAt = s.now()
	s.log.Debug("📂 Drive illustration folder listed", zap.String("folderId", s.folderID), zap.Int("files", len(index)))
	return index, nil
}

// IllustrationResolver turns catalog illustration names into embeddable data URIs
type IllustrationResolver interface {
	Resolve(ctx context.Context, page int, name string) (string, error)
}

// illustrationNotFound wraps a missing-source error into the page-level error
func illustrationNotFound(page int, name string, err error) error {
	if errors.Is(err, ErrIllustrationMissing) {
		return &models.IllustrationNotFoundError{PageNumber: page, Name: name}
	}
	return fmt.Errorf("failed to fetch illustration %s for page %d: %w", name, page, err)
}
