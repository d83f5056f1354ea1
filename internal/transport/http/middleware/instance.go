package middleware

import (
	"context"
	"net/http"

	"github.com/ErlanBelekov/social-discovery/internal/authstate"
	"github.com/ErlanBelekov/social-discovery/internal/reqctx"
	"github.com/gin-gonic/gin"
)

const (
	ClientCookie       = "sd_client"
	clientCookieMaxAge = 365 * 24 * 60 * 60
	instanceKey        = "instance"
)

// instanceSource is satisfied by *authstate.Registry.
type instanceSource interface {
	Get(ctx context.Context, clientID string) *authstate.Instance
	Transient(clientID string) *authstate.Instance
}

// Instance identifies the browser by its client cookie, minting one on first
// visit, and attaches that client's auth instance to the request. A freshly
// minted id only gets a registered instance on POST; reads render from a
// transient signed-out one so cookie-less traffic holds no memory.
func Instance(instances instanceSource, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ClientCookie)
		minted := err != nil || !reqctx.ValidID(id)
		if minted {
			id = reqctx.NewID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, id, clientCookieMaxAge, "/", "", secureCookie, true)
		}

		ctx := reqctx.WithClientID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)

		var inst *authstate.Instance
		if minted && c.Request.Method != http.MethodPost {
			inst = instances.Transient(id)
		} else {
			inst = instances.Get(ctx, id)
		}
		c.Set(instanceKey, inst)
		c.Next()
	}
}

// CurrentInstance returns the instance attached by Instance. It panics if
// the middleware did not run.
func CurrentInstance(c *gin.Context) *authstate.Instance {
	return c.MustGet(instanceKey).(*authstate.Instance)
}
