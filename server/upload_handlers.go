package server

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/jrsteele09/go-youtube-uploader/internal/errors"
	"github.com/jrsteele09/go-youtube-uploader/uploadjobs"
	"github.com/jrsteele09/go-youtube-uploader/youtube"
	"github.com/rs/zerolog/log"
)

// uploadSource is where the media of an upload job comes from.
type uploadSource interface {
	Open(ctx context.Context) (io.ReadCloser, int64, error)
	// Cleanup releases anything kept for the job, such as a spooled file.
	Cleanup()
}

type spooledFile struct {
	path string
	size int64
}

func (f spooledFile) Open(context.Context) (io.ReadCloser, int64, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, 0, err
	}
	return file, f.size, nil
}

func (f spooledFile) Cleanup() {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", f.path).Msg("Failed to remove spooled upload")
	}
}

type driveFile struct {
	svc    DriveService
	fileID string
}

func (f driveFile) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	meta, body, err := f.svc.Open(ctx, f.fileID)
	if err != nil {
		return nil, 0, err
	}
	return body, meta.Size, nil
}

func (driveFile) Cleanup() {}

// CreateUploadHandler validates the form, stores the media and starts the upload
// in the background. It answers 202 with the job to poll.
func (s *Server) CreateUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		channel, ok := sess.SelectedChannel()
		if !ok {
			s.respondError(w, r, apperrors.ErrNoChannelSelected)
			return
		}
		if err := parseForm(r, s.config.GetUploadMaxMemory()); err != nil {
			s.respondError(w, r, err)
			return
		}
		meta, err := metadataFromForm(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		// The upload outlives this request, so its clients must not use the request context.
		ctx := context.WithoutCancel(r.Context())
		client, err := sess.Auth.HTTPClient(ctx)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		uploader, err := s.newYouTube(ctx, client)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		job := uploadjobs.Job{SessionID: sess.ID, Title: meta.Title, ChannelID: channel.ID}
		var src uploadSource
		if fileID := strings.TrimSpace(r.FormValue("drive_file_id")); fileID != "" {
			svc, err := s.driveFor(ctx, sess)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			src = driveFile{svc: svc, fileID: fileID}
			job.Source = uploadjobs.SourceDrive
			job.SourceName = fileID
		} else {
			file, header, err := r.FormFile("video")
			if err != nil {
				s.respondError(w, r, fmt.Errorf("%w: a video file or drive_file_id is required", apperrors.ErrInvalidRequest))
				return
			}
			defer file.Close()
			spooled, err := s.spool(file, header)
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			src = spooled
			job.Source = uploadjobs.SourceLocal
			job.SourceName = header.Filename
			job.TotalBytes = spooled.size
		}

		if !s.trackUpload() {
			src.Cleanup()
			s.respondError(w, r, apperrors.ErrShuttingDown)
			return
		}
		job, err = s.jobs.Create(job)
		if err != nil {
			s.uploads.Done()
			src.Cleanup()
			s.respondError(w, r, err)
			return
		}
		log.Info().
			Str("session_id", sess.ID).
			Str("job_id", job.ID).
			Str("source", string(job.Source)).
			Str("channel_id", channel.ID).
			Msg("Upload queued")

		go s.runUpload(job.ID, uploader, src, meta)
		writeJSON(w, http.StatusAccepted, job)
	}
}

// UploadStatusHandler returns a job of the caller's session.
func (s *Server) UploadStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r)
		job, err := s.jobs.Get(r.PathValue("id"))
		if err != nil || job.SessionID != sess.ID {
			s.respondError(w, r, apperrors.Wrapf(apperrors.ErrNotFound, "upload job %s", r.PathValue("id")))
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

// trackUpload registers a background upload with Shutdown. It is false once
// shutdown has begun.
func (s *Server) trackUpload() bool {
	s.uploadsLock.Lock()
	defer s.uploadsLock.Unlock()
	if s.shuttingDown {
		return false
	}
	s.uploads.Add(1)
	return true
}

func (s *Server) runUpload(jobID string, uploader VideoService, src uploadSource, meta youtube.VideoMetadata) {
	defer s.uploads.Done()
	defer src.Cleanup()
	logger := log.With().Str("job_id", jobID).Logger()

	ctx, cancel := context.WithTimeout(s.uploadsCtx, s.config.GetUploadTimeout())
	defer cancel()

	fail := func(err error) {
		if s.uploadsCtx.Err() != nil {
			err = fmt.Errorf("%w: %v", apperrors.ErrShuttingDown, err)
		}
		logger.Error().Err(err).Msg("Upload failed")
		_, _ = s.jobs.Update(jobID, func(j *uploadjobs.Job) { j.Fail(err) })
	}

	body, size, err := src.Open(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer body.Close()

	_, _ = s.jobs.Update(jobID, func(j *uploadjobs.Job) { j.SetProgress(0, size) })
	result, err := uploader.Upload(ctx, body, size, meta, func(sent, total int64) {
		_, _ = s.jobs.Update(jobID, func(j *uploadjobs.Job) { j.SetProgress(sent, total) })
	})
	if err != nil {
		fail(err)
		return
	}

	_, _ = s.jobs.Update(jobID, func(j *uploadjobs.Job) { j.Succeed(result.VideoID, result.URL) })
	logger.Info().Str("video_id", result.VideoID).Str("privacy", result.PrivacyStatus).Msg("Upload finished")
}

// spool copies the posted file into the data folder so the upload can continue
// after the request ends.
func (s *Server) spool(file multipart.File, header *multipart.FileHeader) (spooledFile, error) {
	dir := filepath.Join(s.config.GetDataFolder(), "uploads")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return spooledFile{}, apperrors.Wrapf(err, "failed to create upload folder")
	}
	out, err := os.CreateTemp(dir, "upload-*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		return spooledFile{}, apperrors.Wrapf(err, "failed to create spool file")
	}
	size, err := io.Copy(out, file)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(out.Name())
		return spooledFile{}, apperrors.Wrapf(err, "failed to store uploaded video")
	}
	if size == 0 {
		_ = os.Remove(out.Name())
		return spooledFile{}, fmt.Errorf("%w: the video file is empty", apperrors.ErrInvalidRequest)
	}
	return spooledFile{path: out.Name(), size: size}, nil
}

func metadataFromForm(r *http.Request) (youtube.VideoMetadata, error) {
	categoryID, err := youtube.ParseCategoryID(r.FormValue("category"))
	if err != nil {
		return youtube.VideoMetadata{}, err
	}
	privacy, err := youtube.ParsePrivacy(r.FormValue("privacy"))
	if err != nil {
		return youtube.VideoMetadata{}, err
	}
	meta := youtube.VideoMetadata{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		CategoryID:  categoryID,
		Privacy:     privacy,
		Tags:        youtube.ParseTags(r.FormValue("tags")),
		MadeForKids: truthy(r.FormValue("made_for_kids")),
	}
	return meta, meta.Validate()
}

var (
	_ uploadSource = spooledFile{}
	_ uploadSource = driveFile{}
)
