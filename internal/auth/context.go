package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID      = "user_id"
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxIdentity    = "identity"
)

// UserID extracts the authenticated user's id from the Gin context.
// This is set by middleware.RequireUser.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// CurrentIdentity returns the full identity resolved for the request, if any.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}

// SetIdentity stores id on the Gin context under the keys handlers read.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(CtxUserID, id.UserID)
	c.Set(CtxIdentity, id)
	if id.FirebaseUID != "" {
		c.Set(CtxFirebaseUID, id.FirebaseUID)
	}
	if id.Email != "" {
		c.Set(CtxEmail, id.Email)
	}
}
