package common

import (
	"strings"
	"time"
)

const (
	JWTKey       = "forge-jwt-key"
	JWTExpire    = 24 * time.Hour
	JWTNewExpire = 2 * time.Hour // refresh window before expiry
)

func GetAuthorizationToken(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return "", NewErrNo(TokenInvalid)
	}
	return parts[1], nil
}
