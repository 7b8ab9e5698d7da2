package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Auth Routes
	RouteAuthBegin    = "/auth/begin"
	RouteAuthComplete = "/auth/complete"
	RouteAuthLogout   = "/auth/logout"
	RouteCallback     = "/callback"

	// API Routes
	RouteAPIPrefix         = "/api/"
	RouteAPISession        = "/api/session"
	RouteAPICategories     = "/api/categories"
	RouteAPIChannels       = "/api/channels"
	RouteAPIChannelsSelect = "/api/channels/select"
	RouteAPIDriveVideos    = "/api/drive/videos"
	RouteAPIUploads        = "/api/uploads"
	RouteAPIUpload         = "/api/uploads/{id}"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
