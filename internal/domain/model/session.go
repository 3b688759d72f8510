package model

// Session is the server-side record of an authenticated principal. A session
// exists only for users that were active at creation time; it is destroyed on
// logout and there are no intermediate states.
type Session struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
