package server

import (
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/go-youtube-uploader/drive"
	"github.com/jrsteele09/go-youtube-uploader/identity"
	"github.com/jrsteele09/go-youtube-uploader/youtube"
)

var (
	_ VideoService = (*youtube.Service)(nil)
	_ DriveService = (*drive.Service)(nil)
)

// VideoService is the part of the YouTube API the handlers use.
type VideoService interface {
	ListChannels(ctx context.Context) ([]youtube.Channel, error)
	Upload(ctx context.Context, r io.Reader, size int64, meta youtube.VideoMetadata, progress youtube.ProgressFunc) (*youtube.UploadResult, error)
}

// DriveService is the part of the Drive API the handlers use.
type DriveService interface {
	ListVideos(ctx context.Context, folderID string) ([]drive.File, error)
	Open(ctx context.Context, fileID string) (*drive.File, io.ReadCloser, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*identity.Identity, error)
}

// YouTubeFactory builds a VideoService around an authorised client.
type YouTubeFactory func(ctx context.Context, httpClient *http.Client) (VideoService, error)

// DriveFactory builds a DriveService around an authorised client.
type DriveFactory func(ctx context.Context, httpClient *http.Client) (DriveService, error)

// VerifierFactory builds the ID token verifier of an OAuth client.
type VerifierFactory func(ctx context.Context, clientID string) (IdentityVerifier, error)

func (s *Server) defaultYouTubeFactory(ctx context.Context, httpClient *http.Client) (VideoService, error) {
	return youtube.NewService(ctx, httpClient, youtube.WithChunkSize(s.config.GetUploadChunkSize()))
}

func defaultDriveFactory(ctx context.Context, httpClient *http.Client) (DriveService, error) {
	return drive.NewService(ctx, httpClient)
}

func (s *Server) defaultVerifierFactory(ctx context.Context, clientID string) (IdentityVerifier, error) {
	// The provider keeps the context for fetching signing keys, so it must outlive the request.
	return identity.NewVerifier(context.WithoutCancel(ctx), s.config.GetOIDCIssuer(), clientID)
}
