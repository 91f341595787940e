package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const ActorIDKey contextKey = "actorID"

// GetActorID returns the authenticated member id placed on the request
// context by AuthMiddleware.
func GetActorID(r *http.Request) (uint, error) {
	actorID, ok := r.Context().Value(ActorIDKey).(uint)
	if !ok {
		return 0, errors.New("actor ID not found in context")
	}
	return actorID, nil
}

// OptionalActorID returns the member id when the request carried a
// valid token and 0 for anonymous readers.
func OptionalActorID(r *http.Request) uint {
	actorID, _ := r.Context().Value(ActorIDKey).(uint)
	return actorID
}

// AuthMiddleware requires a valid bearer token and puts the member id
// on the request context.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		actorID, err := parseBearerToken(authHeader)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ActorIDKey, actorID)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuth parses a bearer token when present. Requests without a
// usable token proceed anonymously.
func OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next(w, r)
			return
		}

		actorID, err := parseBearerToken(authHeader)
		if err != nil {
			next(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ActorIDKey, actorID)
		next(w, r.WithContext(ctx))
	}
}

func parseBearerToken(authHeader string) (uint, error) {
	tokenString := strings.Replace(authHeader, "Bearer ", "", 1)

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("SECRET_KEY")), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	actorID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.New("invalid member ID in token")
	}
	return uint(actorID), nil
}
