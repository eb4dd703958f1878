package store

import "fmt"

// Key namespace of the storage medium. Values are UTF-8 JSON text except the
// session marker (bare username) and alert flags ("1").
const (
	SessionKey = "et:session"
	AuthPrefix = "et:auth:"
	UserPrefix = "et:user:"
)

// AuthKey is the credential record key for a username.
func AuthKey(username string) string { return AuthPrefix + username }

// UserKey is the user aggregate record key for a username.
func UserKey(username string) string { return UserPrefix + username }

// AlertKey gates budget alert re-firing per (user, month, budget, threshold).
func AlertKey(username, month, budgetID string, threshold int) string {
	return fmt.Sprintf("et:alert:%s:%s:%s:%d", username, month, budgetID, threshold)
}
