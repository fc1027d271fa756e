package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth  = RouteApiV1 + "/auth"
	RouteLogin = RouteAuth + "/login"

	RouteUsers = RouteApiV1 + "/users"
	RouteUser  = RouteUsers + "/:user_id"

	// uploads
	RouteUploads      = RouteUser + "/uploads"
	RouteUpload       = RouteUploads + "/:session_id"
	RouteUploadChunk  = RouteUpload + "/chunks/:index"
	RouteUploadFinish = RouteUpload + "/complete"

	// tree
	RouteFolders       = RouteUser + "/folders"
	RouteFolderResolve = RouteFolders + "/resolve"
	RouteItems         = RouteUser + "/items"
	RouteItem          = RouteItems + "/:item_id"
	RouteItemDownload  = RouteItem + "/download"
	RouteStorage       = RouteUser + "/storage"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
