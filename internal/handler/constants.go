package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSignUp is the sign-up route.
	RouteSignUp = "/sign-up"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteJoinClub is the club elevation route.
	RouteJoinClub = "/join-club"
	// RouteNewMessage is the message creation route.
	RouteNewMessage = "/new-message"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
)
