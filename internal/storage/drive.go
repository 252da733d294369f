package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const drivePublicURLBase = "https://drive.google.com/uc?id="

// DriveStorage implements Storage on a Google Drive folder using a service account.
type DriveStorage struct {
	files       *drive.FilesService
	permissions *drive.PermissionsService
	folderID    string
	logger      *slog.Logger
}

// NewDriveStorage authenticates with the service account key at
// credentialsFile and targets folderID. Extra client options are appended,
// which lets tests point the client at a fake endpoint.
func NewDriveStorage(ctx context.Context, credentialsFile, folderID string, logger *slog.Logger, opts ...option.ClientOption) (*DriveStorage, error) {
	clientOpts := []option.ClientOption{option.WithScopes(drive.DriveFileScope)}
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &DriveStorage{
		files:       svc.Files,
		permissions: svc.Permissions,
		folderID:    folderID,
		logger:      logger.With(slog.String("component", "drive_storage")),
	}, nil
}

// Upload creates a new Drive file in the configured folder and returns its id.
// size is unused; Drive reads the stream to the end.
func (s *DriveStorage) Upload(ctx context.Context, name string, reader io.Reader, _ int64, contentType string) (string, error) {
	meta := &drive.File{Name: name}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	call := s.files.Create(meta).Fields("id").Context(ctx)
	if contentType != "" {
		call = call.Media(reader, googleapi.ContentType(contentType))
	} else {
		call = call.Media(reader)
	}

	f, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("create drive file %q: %w", name, err)
	}
	return f.Id, nil
}

// MakePublic grants reader access to anyone.
func (s *DriveStorage) MakePublic(ctx context.Context, key string) error {
	perm := &drive.Permission{Role: "reader", Type: "anyone"}
	if _, err := s.permissions.Create(key, perm).Context(ctx).Do(); err != nil {
		return fmt.Errorf("share drive file %q: %w", key, err)
	}
	return nil
}

// Delete removes the Drive file.
func (s *DriveStorage) Delete(ctx context.Context, key string) error {
	if err := s.files.Delete(key).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete drive file %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the direct download URL for a shared Drive file.
func (s *DriveStorage) PublicURL(key string) string {
	return drivePublicURLBase + key
}
