package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/db"
	"github.com/recommend-sdk/currentstate/internal/logging"
	"google.golang.org/api/option"
)

//Config Firebase project settings.
type Config struct {
	ProjectID       string
	DatabaseURL     string
	CredentialsFile string
}

func newApp(ctx context.Context, config Config) (*firebase.App, error) {
	conf := &firebase.Config{
		ProjectID:   config.ProjectID,
		DatabaseURL: config.DatabaseURL,
	}

	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	return app, nil
}

//NewFirestoreClient Creates Firestore client of the configured Firebase project. Without credentials file the
//application default credentials are used (or the emulator, when FIRESTORE_EMULATOR_HOST is set).
func NewFirestoreClient(ctx context.Context, config Config) (*firestore.Client, error) {
	logger := logging.FromContext(ctx).Named("firebase.NewFirestoreClient")

	app, err := newApp(ctx, config)
	if err != nil {
		return nil, err
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	logger.Debugf("Connected to Firestore of project %v", config.ProjectID)

	return client, nil
}

//NewDatabaseClient Creates Realtime DB client for config.DatabaseURL.
func NewDatabaseClient(ctx context.Context, config Config) (*db.Client, error) {
	logger := logging.FromContext(ctx).Named("firebase.NewDatabaseClient")

	app, err := newApp(ctx, config)
	if err != nil {
		return nil, err
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Database: %w", err)
	}

	logger.Debugf("Connected to Realtime DB %v", config.DatabaseURL)

	return client, nil
}
