package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/angelmondragon/farmfresh-backend/api/responses"
	pkgerrors "github.com/angelmondragon/farmfresh-backend/pkg/errors"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

// CartSessionHeader carries the browser's cart profile for guests and signed-in shoppers alike.
const CartSessionHeader = "X-Cart-Session"

var cartSessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CartProfile resolves which stored cart a request operates on. The X-Cart-Session
// header wins over the user id; the two map to disjoint guest: and user: profiles.
// Requests with neither proceed without a profile.
func CartProfile(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			session := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if session != "" && !cartSessionPattern.MatchString(session) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session").
					WithDetails(map[string]any{"header": CartSessionHeader}))
				return
			}
			var profile string
			switch userID := UserIDFromContext(ctx); {
			case session != "":
				profile = kv.GuestProfile(session)
			case userID != "":
				profile = kv.UserProfile(userID)
			}
			if profile != "" {
				ctx = WithCartProfile(ctx, profile)
				if logg != nil {
					ctx = logg.WithCartProfile(ctx, profile)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
