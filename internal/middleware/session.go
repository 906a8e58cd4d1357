package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/hongminglow/medtour-be/internal/access"
	"github.com/hongminglow/medtour-be/internal/auth"
)

type sessionKey struct{}

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(raw string) (auth.Claims, error)
}

// lazySession defers the role and profile lookups until a handler asks for
// the session, so routes that never read it cost no queries.
type lazySession struct {
	once    sync.Once
	resolve func() access.Session
	session access.Session
}

func (l *lazySession) get() access.Session {
	l.once.Do(func() { l.session = l.resolve() })
	return l.session
}

// Session reads the caller's bearer token and X-View-As header and attaches
// a session to the request context. The access.Session is resolved on the
// first SessionFrom call. Missing or invalid tokens yield an anonymous
// session; handlers decide what that means.
func Session(tokens TokenParser, resolver *access.Resolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var subject string
		if raw, ok := auth.BearerToken(r.Header.Get("Authorization")); ok {
			if claims, err := tokens.Parse(raw); err == nil {
				subject = claims.Subject
			}
		}
		viewAs, err := access.ParseViewAs(r.Header.Get(access.HeaderViewAs))
		if err != nil {
			viewAs = access.ViewAsAdmin
		}
		ctx := r.Context()
		lazy := &lazySession{resolve: func() access.Session {
			return resolver.Resolve(ctx, subject, viewAs)
		}}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey{}, lazy)))
	})
}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s access.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached by Session or WithSession, or an
// anonymous one.
func SessionFrom(ctx context.Context) access.Session {
	switch s := ctx.Value(sessionKey{}).(type) {
	case *lazySession:
		return s.get()
	case access.Session:
		return s
	default:
		return access.Session{}
	}
}
