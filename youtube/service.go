package youtube

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

var channelParts = []string{"snippet", "contentDetails", "statistics"}
var uploadParts = []string{"snippet", "status"}

// Channel is a channel owned by the authenticated account.
type Channel struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	Description           string `json:"description"`
	CustomURL             string `json:"customUrl,omitempty"`
	ThumbnailURL          string `json:"thumbnailUrl,omitempty"`
	UploadsPlaylistID     string `json:"uploadsPlaylistId,omitempty"`
	SubscriberCount       uint64 `json:"subscriberCount"`
	HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
	VideoCount            uint64 `json:"videoCount"`
	ViewCount             uint64 `json:"viewCount"`
}

// UploadResult describes the inserted video.
type UploadResult struct {
	VideoID       string `json:"videoId"`
	URL           string `json:"url"`
	PrivacyStatus string `json:"privacyStatus"`
	UploadStatus  string `json:"uploadStatus"`
}

// ProgressFunc receives the number of bytes handed to the transport so far and the
// total size, which is zero when unknown.
type ProgressFunc func(sent, total int64)

// Service is a thin adapter over the YouTube Data API v3 client.
type Service struct {
	api       *youtubeapi.Service
	chunkSize int
}

type ServiceOption func(*serviceSettings)

type serviceSettings struct {
	endpoint  string
	chunkSize int
}

// WithEndpoint points the client at another API root (primarily for testing).
func WithEndpoint(endpoint string) ServiceOption {
	return func(s *serviceSettings) {
		s.endpoint = endpoint
	}
}

// WithChunkSize sets the media chunk size; zero uploads in a single request.
func WithChunkSize(size int) ServiceOption {
	return func(s *serviceSettings) {
		s.chunkSize = size
	}
}

// NewService creates the adapter. httpClient must already authorise requests,
// e.g. the client returned by authsession.Session.HTTPClient.
func NewService(ctx context.Context, httpClient *http.Client, opts ...ServiceOption) (*Service, error) {
	if httpClient == nil {
		return nil, errors.New("[youtube NewService] httpClient is required")
	}
	settings := serviceSettings{chunkSize: googleapi.DefaultUploadChunkSize}
	for _, opt := range opts {
		opt(&settings)
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if settings.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(settings.endpoint))
	}
	api, err := youtubeapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "[youtube NewService] failed to create YouTube client")
	}
	return &Service{api: api, chunkSize: settings.chunkSize}, nil
}

// ListChannels returns the channels of the authenticated account.
func (s *Service) ListChannels(ctx context.Context) ([]Channel, error) {
	resp, err := s.api.Channels.List(channelParts).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list channels")
	}

	channels := make([]Channel, 0, len(resp.Items))
	for _, item := range resp.Items {
		channels = append(channels, channelFromAPI(item))
	}
	return channels, nil
}

func channelFromAPI(item *youtubeapi.Channel) Channel {
	ch := Channel{ID: item.Id}
	if sn := item.Snippet; sn != nil {
		ch.Title = sn.Title
		ch.Description = sn.Description
		ch.CustomURL = sn.CustomUrl
		if sn.Thumbnails != nil && sn.Thumbnails.Default != nil {
			ch.ThumbnailURL = sn.Thumbnails.Default.Url
		}
	}
	if cd := item.ContentDetails; cd != nil && cd.RelatedPlaylists != nil {
		ch.UploadsPlaylistID = cd.RelatedPlaylists.Uploads
	}
	if st := item.Statistics; st != nil {
		ch.SubscriberCount = st.SubscriberCount
		ch.HiddenSubscriberCount = st.HiddenSubscriberCount
		ch.VideoCount = st.VideoCount
		ch.ViewCount = st.ViewCount
	}
	return ch
}

// Upload inserts a video read from r. size is used for progress reporting and
// may be zero when unknown.
func (s *Service) Upload(ctx context.Context, r io.Reader, size int64, meta VideoMetadata, progress ProgressFunc) (*UploadResult, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	video := &youtubeapi.Video{
		Snippet: &youtubeapi.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			CategoryId:  meta.CategoryID,
			Tags:        meta.Tags,
		},
		Status: &youtubeapi.VideoStatus{
			PrivacyStatus:           string(meta.Privacy),
			SelfDeclaredMadeForKids: meta.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	if progress != nil {
		r = &progressReader{r: r, total: size, report: progress}
	}

	call := s.api.Videos.Insert(uploadParts, video).
		Media(r, googleapi.ChunkSize(s.chunkSize)).
		Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, errors.Wrap(err, "failed to upload video")
	}

	result := &UploadResult{VideoID: resp.Id, URL: WatchURL(resp.Id)}
	if resp.Status != nil {
		result.PrivacyStatus = resp.Status.PrivacyStatus
		result.UploadStatus = resp.Status.UploadStatus
	}
	return result, nil
}

// progressReader reports cumulative bytes read by the transport.
type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
