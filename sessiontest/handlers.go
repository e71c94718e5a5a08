package sessiontest

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/heattrack/sessionkit/core/auth/jwt"
)

const ctxUser = "sessiontest.user"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (b *Backend) routes() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.POST("/auth/login", b.handleLogin)
	api.POST("/auth/refresh-token", b.refreshValidator, b.handleRefresh)
	api.GET("/auth/me", b.protect, b.handleMe)
	api.GET("/ping", b.protect, func(c *gin.Context) {
		b.ping.Add(1)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func reject(c *gin.Context, message, errorType string) {
	body := gin.H{"success": false, "message": message}
	if errorType != "" {
		body["errorType"] = errorType
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}

func (b *Backend) handleLogin(c *gin.Context) {
	b.login.Add(1)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, msgInvalidCredentials, "")
		return
	}

	u, ok := b.user(req.Username)
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		reject(c, msgInvalidCredentials, "")
		return
	}

	token, err := b.Issue(u.Username, b.now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur serveur lors de la connexion"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

// protect 校验签名、过期和服务端空闲时长
func (b *Backend) protect(c *gin.Context) {
	token := bearer(c)
	if token == "" {
		reject(c, msgMissingToken, "")
		return
	}

	claims, err := b.signer.Verify(token, false)
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		reject(c, "Session expirée", "token_expired")
		return
	case err != nil:
		reject(c, "Token invalide", "token_invalid")
		return
	}

	if b.idleTooLong(claims, b.inactivity) {
		reject(c, "Session expirée due à l'inactivité", "inactivity_timeout")
		return
	}
	b.attachUser(c, claims)
}

// refreshValidator 接受已过期 token，空闲上限放宽为两倍
func (b *Backend) refreshValidator(c *gin.Context) {
	token := bearer(c)
	if token == "" {
		reject(c, msgMissingToken, "")
		return
	}

	claims, err := b.signer.Verify(token, true)
	if err != nil {
		reject(c, "Token invalide ou corrompu", "token_invalid")
		return
	}
	if b.idleTooLong(claims, 2*b.inactivity) {
		reject(c, "Session expirée, impossible de rafraîchir après une inactivité prolongée", "inactivity_timeout")
		return
	}
	b.attachUser(c, claims)
}

func (b *Backend) idleTooLong(claims *jwt.Claims, limit time.Duration) bool {
	if claims.LastActivity == 0 {
		return false
	}
	return b.now().Sub(time.UnixMilli(claims.LastActivity)) > limit
}

func (b *Backend) attachUser(c *gin.Context, claims *jwt.Claims) {
	u, ok := b.user(claims.Username)
	if !ok {
		reject(c, msgUserNotFound, "")
		return
	}
	c.Set(ctxUser, u)
	c.Next()
}

func (b *Backend) handleRefresh(c *gin.Context) {
	b.refresh.Add(1)
	u := c.MustGet(ctxUser).(User)

	token, err := b.Issue(u.Username, b.now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erreur serveur lors du rafraîchissement du token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

func (b *Backend) handleMe(c *gin.Context) {
	b.me.Add(1)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": c.MustGet(ctxUser).(User)})
}
