// Package firebase builds the ID-token verifier used when the blog server
// runs with AUTH_MODE=firebase
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrNoCredentials is returned when firebase auth is selected without a service account file
var ErrNoCredentials = errors.New("AUTH_MODE=firebase requires FIREBASE_CREDENTIALS_PATH")

// NewTokenVerifier loads the service account at credentialsPath and returns
// the auth client that checks bearer tokens on post and comment writes
func NewTokenVerifier(ctx context.Context, credentialsPath string, log *zap.Logger) (*auth.Client, error) {
	if credentialsPath == "" {
		return nil, ErrNoCredentials
	}
	info, err := os.Stat(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("reading firebase service account %s: %w", credentialsPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("firebase service account %s is a directory", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("creating firebase app for write auth: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating firebase token verifier: %w", err)
	}

	log.Info("write routes guarded by firebase ID tokens", zap.String("credentials", credentialsPath))
	return client, nil
}
