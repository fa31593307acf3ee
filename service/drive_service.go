package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"astrobook/models"
)

var imageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
	log    *zap.Logger
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// NewDriveService creates a new DriveService instance.
// credentialsPath should be the path to the Service Account JSON file.
func NewDriveService(ctx context.Context, credentialsPath string, log *zap.Logger) (*DriveService, error) {
	client, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client: client,
		log:    log,
	}, nil
}

// ListIllustrations lists every image file in a Drive folder
func (ds *DriveService) ListIllustrations(ctx context.Context, folderID string) ([]models.IllustrationFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var files []models.IllustrationFile
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)")

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		for _, f := range r.Files {
			if !imageMimeTypes[strings.ToLower(f.MimeType)] {
				ds.log.Debug("⏭️  Skipping non-image file", zap.String("name", f.Name), zap.String("mimeType", f.MimeType))
				continue
			}
			files = append(files, models.IllustrationFile{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	ds.log.Info("📦 Listed Drive illustrations", zap.String("folderId", folderID), zap.Int("count", len(files)))
	return files, nil
}

// DownloadFile downloads the content of a Drive file
func (ds *DriveService) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := ds.client.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file %s: status %d", fileID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}
