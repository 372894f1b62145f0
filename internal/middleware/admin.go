package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AdminValidator returns a basic-auth validator for the single admin
// credential pair. Echo's BasicAuth middleware issues the 401 and
// WWW-Authenticate challenge on mismatch.
func AdminValidator(username, password string) middleware.BasicAuthValidator {
	return func(user, pass string, c echo.Context) (bool, error) {
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
		return userOK && passOK, nil
	}
}
