package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/facultydesk/facultydesk/internal/auth"
	"github.com/facultydesk/facultydesk/internal/sheets"
)

const claimsKey = "claims"

// authRequired verifies the session cookie before the request reaches its
// handler, and re-issues the cookie so that an active session does not
// expire.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(auth.SessionCookie)
		if err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := s.sessions.Verify(cookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if refreshed, err := s.sessions.Issue(claims.Email); err == nil {
			s.setSessionCookie(c, refreshed)
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, int(s.sessions.TTL().Seconds()), "/", "", s.secureCookies, true)
}

func (s *Server) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, err := s.sessions.Login(body.Email, body.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	s.setSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", s.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) session(c *gin.Context) {
	claims := c.MustGet(claimsKey).(*auth.Claims)

	c.JSON(http.StatusOK, gin.H{"email": claims.Email})
}

// facultyStatus recomputes the full report on every request - the spreadsheet
// is the system of record and nothing is cached server-side.
func (s *Server) facultyStatus(c *gin.Context) {
	report, err := s.builder.BuildShared(c.Request.Context())
	if err != nil {
		s.log.Error("faculty status report failed", zap.Error(err))

		message := "Failed to fetch faculty data. Please ensure the Google Sheets are shared with the service account."
		if errors.Is(err, sheets.ErrAccessDenied) && s.serviceAccount != "" {
			message = fmt.Sprintf("Permission denied. Please share the Google Sheets with the service account: %s", s.serviceAccount)
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          message,
			"serviceAccount": s.serviceAccount,
		})
		return
	}

	c.JSON(http.StatusOK, report)
}
