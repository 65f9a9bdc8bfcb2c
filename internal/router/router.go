package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"animalsquad/internal/auth"
	"animalsquad/internal/config"
	apperrors "animalsquad/internal/errors"
	"animalsquad/internal/handler"
	"animalsquad/internal/metrics"
)

var (
	errRevokedToken = errors.New("access token has been revoked")
	errNotAccess    = errors.New("refresh token presented as access token")
)

// Handlers groups the route handlers.
type Handlers struct {
	Pet  *handler.PetHandler
	Auth *handler.AuthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	gatherer prometheus.Gatherer,
	handlers Handlers,
	logger *zap.Logger,
) {
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(gatherer)))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Multipart overhead on top of the image itself.
	api := e.Group("/api", middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+(1<<20), 10)))

	// Public routes
	api.POST("/pets/signup", handlers.Pet.Signup)
	api.GET("/pets/check", handlers.Pet.CheckLoginID)
	api.POST("/auth/login", handlers.Auth.Login)
	api.POST("/auth/reissue", handlers.Auth.Reissue)
	api.POST("/auth/logout", handlers.Auth.Logout)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(JWTConfig(jwtService, tokenStore)))

	secured.GET("/pets/:id", handlers.Pet.GetPet)
	secured.PATCH("/pets/:id", handlers.Pet.UpdatePet)
	secured.DELETE("/pets/:id", handlers.Pet.DeletePet)
	secured.POST("/pets/:id/admin", handlers.Pet.GrantAdmin)
	secured.GET("/pets/:id/posts", handlers.Pet.ListPosts)
}

// JWTConfig validates bearer access tokens with jwtService and rejects
// blacklisted ones. Accepted claims are stored under handler.ClaimsContextKey.
func JWTConfig(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) echojwt.Config {
	return echojwt.Config{
		ContextKey:  handler.ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, err
			}
			if len(claims.Auth) == 0 {
				return nil, errNotAccess
			}
			revoked, err := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				return nil, err
			}
			if revoked {
				return nil, errRevokedToken
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "missing or invalid access token",
				Code:  "UNAUTHORIZED",
			}).SetInternal(err)
		},
	}
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			if v.Status >= http.StatusInternalServerError {
				logger.Error("request", fields...)
			} else {
				logger.Info("request", fields...)
			}
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
