package session

import (
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// LoginPayload is the request-shaped view of login credentials.
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
	GetExtendedSession() bool
}

// RouteAuthenticator glues the Manager to a router: it guards routes with
// a token-validating middleware, moves the token in and out of cookies,
// and remembers where unauthenticated visitors were headed.
type RouteAuthenticator struct {
	manager                *Manager
	cfg                    Config
	cookieDuration         time.Duration
	extendedCookieDuration time.Duration
	Logger                 Logger
	AuthErrorHandler       func(c router.Context, err error) error
	ErrorHandler           func(c router.Context, err error) error
}

func NewRouteAuthenticator(manager *Manager, cfg Config) (*RouteAuthenticator, error) {
	if manager == nil {
		return nil, goerrors.New("manager is required", goerrors.CategoryBadInput)
	}

	cookieDuration := 24 * time.Hour
	if cfg.GetCookieDuration() > 0 {
		cookieDuration = cfg.GetCookieDuration()
	}

	a := &RouteAuthenticator{
		manager:                manager,
		cfg:                    cfg,
		Logger:                 defLogger{},
		cookieDuration:         cookieDuration,
		extendedCookieDuration: cookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// ProtectedRoute validates the request token before letting the handler
// run. Valid claims are stored in Locals under the configured token key
// and mirrored into the request context.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	extractors := makeTokenExtractors(a.cfg.GetTokenLookup(), a.cfg.GetTokenKey(), a.cfg.GetAuthScheme())

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token, err := extractToken(ctx, extractors)
			if err != nil {
				return errorHandler(ctx, err)
			}

			claims, err := a.manager.Validator().Validate(token)
			if err != nil {
				return errorHandler(ctx, err)
			}

			ctx.Locals(a.cfg.GetTokenKey(), claims)

			stdCtx := WithClaimsContext(ctx.Context(), claims)
			stdCtx = WithAccountContext(stdCtx, accountFromClaims(claims, time.Now()))
			ctx.SetContext(stdCtx)

			return hf(ctx)
		}
	}
}

// Login authenticates the payload and, on success, drops the committed
// token into the session cookie.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) error {
	_, err := a.manager.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return err
	}

	token, ok := a.manager.Store().Read(ctx.Context())
	if !ok {
		return ErrNoToken
	}

	duration := a.cookieDuration
	if payload.GetExtendedSession() {
		duration = a.extendedCookieDuration
	}

	a.setCookieToken(ctx, token, duration)
	return nil
}

// Logout tears down the session and expires the cookie.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.manager.Logout(ctx.Context(), false)
	a.cookieDel(ctx, a.cfg.GetTokenKey())
}

// MakeClientRouteAuthErrorHandler normalizes middleware failures to the
// package error taxonomy. With optional set, failed auth lets the request
// through without a session.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *goerrors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "Invalid authentication token").
				WithCode(goerrors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) GetRedirect(ctx router.Context, def ...string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := ctx.Cookies(rejectedRoute)
	if r == "" {
		return def[0]
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

func (a *RouteAuthenticator) GetRedirectOrDefault(ctx router.Context) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	refererHeader := string(ctx.Referer())

	r := ctx.Cookies(rejectedRoute, refererHeader)
	if r == "" {
		r = a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(ctx, rejectedRoute)
	return r
}

func (a *RouteAuthenticator) SetRedirect(ctx router.Context) {
	rejectedRoute := a.cfg.GetRejectedRouteKey()

	a.Logger.Info("Setting redirect cookie", "key", rejectedRoute, "path", ctx.OriginalURL())

	ctx.Cookie(&router.Cookie{
		Name:     rejectedRoute,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetTokenKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "An unexpected authentication error").
			WithCode(goerrors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error, redirecting to login",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	a.SetRedirect(c)

	statusCode := http.StatusSeeOther
	if c.Method() == string(router.GET) {
		statusCode = http.StatusFound
	}
	return c.Redirect(a.manager.loginPath, statusCode)
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.Status(richErr.Code).Render("errors/500", router.ViewContext{
			"error": richErr,
		})
	}
}

type tokenExtractor func(c router.Context) (string, error)

// makeTokenExtractors parses lookup definitions in the form
// "header:Authorization,cookie:accessToken,query:auth_token".
func makeTokenExtractors(tokenLookup, cookieKey, authScheme string) []tokenExtractor {
	if tokenLookup == "" {
		tokenLookup = "header:" + router.HeaderAuthorization + ",cookie:" + cookieKey
	}
	if authScheme == "" {
		authScheme = "Bearer"
	}

	var extractors []tokenExtractor

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		source := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(name))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		}
	}

	return extractors
}

func extractToken(ctx router.Context, extractors []tokenExtractor) (string, error) {
	for _, extract := range extractors {
		if token, err := extract(ctx); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrTokenMalformed
}

func tokenFromHeader(header, authScheme string) tokenExtractor {
	return func(c router.Context) (string, error) {
		raw := c.GetString(header, "")
		l := len(authScheme)
		if len(raw) > l+1 && strings.EqualFold(raw[:l], authScheme) {
			return strings.TrimSpace(raw[l:]), nil
		}
		return "", ErrTokenMalformed
	}
}

func tokenFromCookie(name string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMalformed
		}
		return token, nil
	}
}

func tokenFromQuery(param string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrTokenMalformed
		}
		return token, nil
	}
}
