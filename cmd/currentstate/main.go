package main

import (
	"net/http"

	"github.com/recommend-sdk/currentstate"
	"github.com/recommend-sdk/currentstate/internal/logging"
	"github.com/recommend-sdk/currentstate/internal/utils"
	"github.com/recommend-sdk/currentstate/pkg/fingerprint"
	server "github.com/recommend-sdk/currentstate/pkg/httpserver"
	"github.com/sethvargo/go-signalcontext"
)

func main() {

	ctx, done := signalcontext.OnInterrupt()
	defer done()

	serverConfig, err := utils.LoadServerConfig(ctx)
	if err != nil {
		logging.FromContext(ctx).Fatalf("Could not load server config: %v", err)
	}

	logger, err := logging.NewLogger(serverConfig.LogLevel)
	if err != nil {
		logging.FromContext(ctx).Fatalf("Could not create logger: %v", err)
	}
	ctx = logging.WithLogger(ctx, logger.Named("currentstate"))
	logger = logging.FromContext(ctx)

	state, err := currentstate.Open(ctx, fingerprint.NewEnvProvider(nil))
	if err != nil {
		logger.Fatalf("Could not open current state: %v", err)
	}
	defer func() {
		if err := state.Close(); err != nil {
			logger.Warnf("Could not close storage: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/state", server.NewHandler(state))

	srv, err := server.NewServer(ctx, &server.Config{Port: serverConfig.Port})
	if err != nil {
		logger.Fatalf("server.NewServer: %v", err)
	}
	logger.Infof("listening on :%s", srv.Port())

	if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
		logger.Fatal(err)
	}
}
