package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeoutSec = 5

// getUserID extracts the authenticated user's ID stored by the JWT
// middleware.  The claim is float64 after JSON decoding.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case float64:
		return uint64(t), nil
	case uint64:
		return t, nil
	case string:
		id, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad user id claim")
		}
		return id, nil
	default:
		return 0, fmt.Errorf("missing user id claim")
	}
}

// pathID parses a numeric :id style path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pathOrQueryID reads a numeric ID from the path, falling back to a
// query parameter of the same name.
func pathOrQueryID(c echo.Context, name string) (uint64, error) {
	raw := c.Param(name)
	if raw == "" {
		raw = c.QueryParam(name)
	}
	return strconv.ParseUint(raw, 10, 64)
}
