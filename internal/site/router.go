package site

import (
	"github.com/gin-gonic/gin"

	"reviewhub/internal/profile"
)

// Router wires the whole HTTP surface except health probes, which the
// server command adds because they depend on its storage backend.
func (s *Site) Router(tokens profile.TokenService, trustedProxies []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(s.Logger))
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		s.Logger.Sugar().Warnf("trusted proxies %v rejected: %v", trustedProxies, err)
	}

	router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	web := router.Group("")
	web.Use(profile.Middleware(tokens, s.Logger))
	s.RegisterRoutes(web)
	s.RegisterAPI(web.Group("/api"))

	return router
}
