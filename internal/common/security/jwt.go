package security

import (
	"errors"
	"time"

	"sales_system/internal/domain/model"
	"sales_system/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateSessionToken signs a token carrying the session id plus identity
// claims. The session store stays authoritative: a token whose session was
// destroyed is rejected by the middleware regardless of its expiry.
func GenerateSessionToken(sess *model.Session) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sess.ID,
		"user_id":    sess.UserID,
		"username":   sess.Username,
		"role":       sess.Role,
		"exp":        time.Now().Add(config.AppConfig.SessionTTL).Unix(),
		"iat":        time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetSessionIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["session_id"].(string)
	if !ok {
		return "", errors.New("session_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}
