package auth

import (
	"context"
	"errors"
	"net/http"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// SessionCookie is the name of the login cookie.
const SessionCookie = "carloan_session"

// SessionMiddleware resolves the login cookie to a user id and stores it in
// the request context; requests without a valid session get 401.
func SessionMiddleware(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie(SessionCookie)
			if err != nil || ck.Value == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sess, err := store.Get(r.Context(), ck.Value)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, sess.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user id placed by SessionMiddleware.
func GetUserID(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0, errors.New("userID not found in context")
	}
	return userID, nil
}

// WithUserID returns a context carrying the given user id. Test helper and
// websocket-endpoint glue.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
