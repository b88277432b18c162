package bootstrap

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"resumeflow/internal/shared/telemetry"
)

// firebaseApp initializes the Firebase app once; auth and Firestore share it.
func (a *App) firebaseApp(ctx context.Context) (*firebase.App, error) {
	if a.firebase != nil {
		return a.firebase, nil
	}
	cfg := a.Config

	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.FirebaseCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
	case strings.TrimSpace(cfg.FirebaseCredentialsB64) != "":
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cfg.FirebaseCredentialsB64))
		if err != nil {
			return nil, fmt.Errorf("decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(raw))
	default:
		telemetry.Info("bootstrap.firebase_adc", map[string]any{"project_id": cfg.FirebaseProjectID})
	}

	var fbCfg *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	a.firebase = app
	return app, nil
}
