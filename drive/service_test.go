package drive_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-youtube-uploader/drive"
	"github.com/stretchr/testify/require"
)

const folderID = "1AbCdEfGhIjKlMnOp"

func TestParseFolderID(t *testing.T) {
	valid := map[string]string{
		folderID: folderID,
		"https://drive.google.com/drive/folders/" + folderID:                 folderID,
		"https://drive.google.com/drive/u/0/folders/" + folderID + "?usp=sh": folderID,
		"https://drive.google.com/open?id=" + folderID:                       folderID,
		"  " + folderID + "  ":                                               folderID,
	}
	for input, want := range valid {
		got, err := drive.ParseFolderID(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "short", "https://drive.google.com/drive/my-drive", "abc' or 'x'='x"} {
		_, err := drive.ParseFolderID(input)
		require.ErrorIs(t, err, drive.ErrInvalidFolder, input)
	}
}

func newTestService(t *testing.T, handler http.HandlerFunc) *drive.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := drive.NewService(context.Background(), srv.Client(), drive.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return svc
}

func TestService_ListVideos(t *testing.T) {
	var queries []string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/files"), r.URL.Path)
		queries = append(queries, r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"nextPageToken":"p2","files":[
				{"id":"f1","name":"intro.mp4","mimeType":"video/mp4","size":"1048576","modifiedTime":"2024-05-01T10:00:00Z"}
			]}`))
			return
		}
		_, _ = w.Write([]byte(`{"files":[
			{"id":"f2","name":"outro.mov","mimeType":"video/quicktime","size":"2048"}
		]}`))
	})

	files, err := svc.ListVideos(context.Background(), folderID)
	require.NoError(t, err)
	require.Equal(t, []drive.File{
		{ID: "f1", Name: "intro.mp4", MimeType: "video/mp4", Size: 1048576, ModifiedTime: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "f2", Name: "outro.mov", MimeType: "video/quicktime", Size: 2048},
	}, files)

	require.Len(t, queries, 2)
	require.Equal(t, "'"+folderID+"' in parents and mimeType contains 'video/' and trashed = false", queries[0])
}

func TestService_ListVideos_Error(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found"}}`))
	})
	_, err := svc.ListVideos(context.Background(), folderID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to list videos in folder "+folderID)
}

func TestService_Open(t *testing.T) {
	handler := func(mime string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			require.True(t, strings.HasSuffix(r.URL.Path, "/files/f1"), r.URL.Path)
			if r.URL.Query().Get("alt") == "media" {
				_, _ = w.Write([]byte("video-bytes"))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"f1","name":"intro.mp4","mimeType":"` + mime + `","size":"11"}`))
		}
	}

	t.Run("video", func(t *testing.T) {
		svc := newTestService(t, handler("video/mp4"))
		file, body, err := svc.Open(context.Background(), "f1")
		require.NoError(t, err)
		defer body.Close()

		require.Equal(t, "intro.mp4", file.Name)
		require.Equal(t, int64(11), file.Size)
		content, err := io.ReadAll(body)
		require.NoError(t, err)
		require.Equal(t, "video-bytes", string(content))
	})

	t.Run("not a video", func(t *testing.T) {
		svc := newTestService(t, handler("application/pdf"))
		_, _, err := svc.Open(context.Background(), "f1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "not a video")
	})
}
