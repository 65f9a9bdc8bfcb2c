package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"animalsquad/internal/auth"
	"animalsquad/internal/errors"
)

// ClaimsContextKey is where the JWT middleware stores *auth.Claims.
const ClaimsContextKey = "pet"

// HeaderRefresh carries the refresh token on responses that issue a pair.
const HeaderRefresh = "Refresh"

// toHTTPError converts a service error into the JSON error body. The cause is
// kept as the internal error so the request logger can report it.
func toHTTPError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func badRequest(message, code string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// currentPetID is the id of the authenticated caller.
func currentPetID(c echo.Context) (uint, error) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing token claims",
			Code:  "UNAUTHORIZED",
		})
	}
	return claims.PetID, nil
}

func pathID(c echo.Context) (uint, error) {
	var id uint
	if err := echo.PathParamsBinder(c).MustUint("id", &id).BindError(); err != nil {
		return 0, badRequest("invalid id", "INVALID_ID")
	}
	return id, nil
}

func writeTokenHeaders(c echo.Context, info *auth.TokenInfo) {
	c.Response().Header().Set(echo.HeaderAuthorization, info.GrantType+" "+info.AccessToken)
	c.Response().Header().Set(HeaderRefresh, info.RefreshToken)
}
