package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHealth = "/api/health"

	// Auth Routes
	RouteAuthLogin    = "/api/auth/login"
	RouteAuthRegister = "/api/auth/register"
	RouteAuthLogout   = "/api/auth/logout"
	RouteAuthMe       = "/api/auth/me"

	// Dashboard Routes
	RouteProjects         = "/api/projects"
	RouteEventDefinitions = "/api/projects/{projectId}/event-definitions"
	RouteSessions         = "/api/sessions"
	RouteAnalytics        = "/api/analytics"
)
