package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed static
var staticFiles embed.FS

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthBegin, ChainMiddleware(s.BeginAuthHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthComplete, ChainMiddleware(s.CompleteAuthHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// API routes
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPrefix, ChainMiddleware(s.PreflightHandler(), s.CorsMiddleware))
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionStatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPICategories, ChainMiddleware(s.CategoriesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIChannels, ChainMiddleware(s.ChannelsHandler(), s.APIMiddleware(s.RequireCredentials)...))
	s.RegisterRouteHandler("POST "+RouteAPIChannelsSelect, ChainMiddleware(s.SelectChannelHandler(), s.APIMiddleware(s.RequireCredentials)...))
	s.RegisterRouteHandler("GET "+RouteAPIDriveVideos, ChainMiddleware(s.DriveVideosHandler(), s.APIMiddleware(s.RequireCredentials)...))
	s.RegisterRouteHandler("POST "+RouteAPIUploads, ChainMiddleware(s.CreateUploadHandler(), s.APIMiddleware(s.RequireCredentials)...))
	s.RegisterRouteHandler("GET "+RouteAPIUpload, ChainMiddleware(s.UploadStatusHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.CacheMiddleware))
	s.RegisterRouteFunc("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.CacheMiddleware))
}

// serveFileHandler serves the embedded css and js. Content type and range
// handling come from http.ServeFileFS.
func (s *Server) serveFileHandler() http.HandlerFunc {
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create static sub filesystem: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		info, err := fs.Stat(assets, name)
		if err != nil || info.IsDir() {
			logError(r.Method, name, "static asset not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		http.ServeFileFS(w, r, assets, name)
	}
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", colourMethod(method), path, Red+error+ResetColor)
}
