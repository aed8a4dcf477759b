package main

import (
	"context"
	"crypto/subtle"
	"errors"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginRequest é o payload do endpoint de login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator valida credenciais e devolve um token opaco
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// StaticAuthenticator compara com um único par de credenciais configurado
type StaticAuthenticator struct {
	username string
	password string
	token    string
}

// NewStaticAuthenticator cria uma nova instância de StaticAuthenticator
func NewStaticAuthenticator(cfg AuthConfig) *StaticAuthenticator {
	return &StaticAuthenticator{
		username: cfg.Username,
		password: cfg.Password,
		token:    cfg.Token,
	}
}

// Authenticate compara as credenciais em tempo constante e devolve o token configurado
func (a *StaticAuthenticator) Authenticate(_ context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return a.token, nil
}
