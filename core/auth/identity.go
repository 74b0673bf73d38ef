package auth

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// IdentityProvider resolves the acting user for audit stamping.
// The core never authenticates; whoever fronts the API decides what
// the actor header means.
type IdentityProvider interface {
	CurrentActor(c echo.Context) *uint
}

// HeaderIdentity reads the actor from the X-Actor-Id request header,
// set by the authenticating proxy or middleware.
type HeaderIdentity struct{}

func (HeaderIdentity) CurrentActor(c echo.Context) *uint {
	raw := c.Request().Header.Get("X-Actor-Id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	actor := uint(id)
	return &actor
}

// StaticIdentity always returns the same actor. Used by CLI commands
// and tests.
type StaticIdentity struct {
	Actor *uint
}

func (s StaticIdentity) CurrentActor(echo.Context) *uint {
	return s.Actor
}
