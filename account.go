package main

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

/*
 * Check request's basic auth credentials against the configured users.
 * Returns the username and whether access is granted
 */
func authenticate(r *http.Request) (string, bool) {
	username, password, ok := r.BasicAuth()

	// Open API
	if len(config.API.Users) == 0 {
		return username, true
	}

	if !ok {
		return "", false
	}

	hash, exists := config.API.Users[username]
	if !exists {
		return username, false
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		return username, false
	}

	return username, true
}
