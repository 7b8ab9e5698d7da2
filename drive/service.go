package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ReadonlyScope is the scope needed to list and download Drive files.
const ReadonlyScope = driveapi.DriveReadonlyScope

var ErrInvalidFolder = errors.New("invalid drive folder")

var folderIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)

const fileFields = "id, name, mimeType, size, modifiedTime"

// File is a video stored in Google Drive.
type File struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modifiedTime"`
}

// ParseFolderID accepts a bare folder id or a Drive folder link, e.g.
// https://drive.google.com/drive/folders/<id> or https://drive.google.com/open?id=<id>.
func ParseFolderID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.Wrap(ErrInvalidFolder, "folder is required")
	}

	id := input
	if strings.Contains(input, "/") || strings.Contains(input, "?") {
		u, err := url.Parse(input)
		if err != nil {
			return "", errors.Wrapf(ErrInvalidFolder, "cannot parse %q", input)
		}
		id = u.Query().Get("id")
		if id == "" {
			segments := strings.Split(strings.Trim(u.Path, "/"), "/")
			for i, seg := range segments {
				if seg == "folders" && i+1 < len(segments) {
					id = segments[i+1]
					break
				}
			}
		}
	}

	if !folderIDPattern.MatchString(id) {
		return "", errors.Wrapf(ErrInvalidFolder, "no folder id in %q", input)
	}
	return id, nil
}

// Service lists and downloads videos through the Drive v3 API.
type Service struct {
	api *driveapi.Service
}

type ServiceOption func(*[]option.ClientOption)

// WithEndpoint points the client at another API root (primarily for testing).
func WithEndpoint(endpoint string) ServiceOption {
	return func(opts *[]option.ClientOption) {
		*opts = append(*opts, option.WithEndpoint(endpoint))
	}
}

// NewService creates the adapter around an already authorised httpClient.
func NewService(ctx context.Context, httpClient *http.Client, opts ...ServiceOption) (*Service, error) {
	if httpClient == nil {
		return nil, errors.New("[drive NewService] httpClient is required")
	}
	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	for _, opt := range opts {
		opt(&clientOpts)
	}
	api, err := driveapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "[drive NewService] failed to create Drive client")
	}
	return &Service{api: api}, nil
}

// ListVideos returns every non-trashed video directly inside folderID.
func (s *Service) ListVideos(ctx context.Context, folderID string) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType contains 'video/' and trashed = false", folderID)

	files := []File{}
	err := s.api.Files.List().
		Q(query).
		Fields("nextPageToken, files("+fileFields+")").
		OrderBy("name").
		PageSize(100).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *driveapi.FileList) error {
			for _, f := range page.Files {
				files = append(files, fileFromAPI(f))
			}
			return nil
		})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list videos in folder %s", folderID)
	}
	return files, nil
}

// Open fetches the metadata of fileID and starts downloading its content. The
// caller must close the returned reader.
func (s *Service) Open(ctx context.Context, fileID string) (*File, io.ReadCloser, error) {
	meta, err := s.api.Files.Get(fileID).Fields(fileFields).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to get file %s", fileID)
	}
	file := fileFromAPI(meta)
	if !strings.HasPrefix(file.MimeType, "video/") {
		return nil, nil, errors.Errorf("file %s is %s, not a video", fileID, file.MimeType)
	}

	resp, err := s.api.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to download file %s", fileID)
	}
	return &file, resp.Body, nil
}

func fileFromAPI(f *driveapi.File) File {
	file := File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, Size: f.Size}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		file.ModifiedTime = t
	}
	return file
}
