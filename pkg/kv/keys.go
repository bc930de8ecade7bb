package kv

import "strings"

const keyNamespace = "ff"

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}

// Cart profiles are namespaced by origin so a browser session id can never
// address the profile of a signed-in user.
const (
	guestProfilePrefix = "guest:"
	userProfilePrefix  = "user:"
)

// GuestProfile is the cart profile of an anonymous browser session.
func GuestProfile(session string) string {
	return guestProfilePrefix + strings.TrimSpace(session)
}

// UserProfile is the cart profile of an authenticated user.
func UserProfile(userID string) string {
	return userProfilePrefix + strings.TrimSpace(userID)
}

// CartKey holds the line items of one cart profile.
func CartKey(profileID string) string {
	return buildKey("cart", profileID)
}

// CurrentUserKey holds the last user that authenticated on a cart profile.
func CurrentUserKey(profileID string) string {
	return buildKey("current_user", profileID)
}

// UsersKey holds the registered users list.
func UsersKey() string {
	return buildKey("users")
}

// OrdersKey holds every order ever placed.
func OrdersKey() string {
	return buildKey("orders")
}

// WishlistKey holds one user's favourite product ids.
func WishlistKey(userID string) string {
	return buildKey("wishlist", userID)
}

// AccessSessionKey maps an access token id to its refresh token.
func AccessSessionKey(accessID string) string {
	return buildKey("session", "access", accessID)
}

// RateLimitKey scopes a rate limit counter.
func RateLimitKey(scope string) string {
	return buildKey("rate_limit", scope)
}

// LockKey names a short-lived mutual exclusion marker.
func LockKey(name string) string {
	return buildKey("lock", name)
}
