// Package auth provides registration, session login and the admin re-auth
// check used before destructive bulk operations.
//
// Roles are derived at registration time: a verification code starting with
// the configured admin prefix (default "ADM") yields an admin account. The
// same stored code then acts as a second factor on every login.
//
// Sessions are server-side (scs with a SQLite store); the cookie carries
// only the session token. Handlers read the authenticated user ID and role
// from the Gin context via GetUserID and GetUserRole.
package auth
