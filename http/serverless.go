package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/awantoch/contentkit/config"
	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/templater"
	"github.com/awantoch/contentkit/utils"
)

var (
	serverlessMutex sync.RWMutex
	serverlessReady bool
	serverlessMux   http.Handler
	serverlessErr   error
)

// ServerlessHandler serves the API from a function runtime. The environment
// is built once from defaults plus CONTENTKIT_* variables.
func ServerlessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(constants.HeaderCORSOrigin, constants.CORSAllowAll)
	w.Header().Set(constants.HeaderCORSMethods, constants.CORSAllowedMethods)
	w.Header().Set(constants.HeaderCORSHeaders, constants.CORSAllowedHeaders)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	mux, err := serverlessHandler(r.Context())
	if err != nil {
		utils.WriteHTTPError(w, constants.ResponseInternalError, http.StatusInternalServerError)
		return
	}
	mux.ServeHTTP(w, r)
}

// serverlessHandler returns the cached mux, building it on first use.
func serverlessHandler(ctx context.Context) (http.Handler, error) {
	serverlessMutex.RLock()
	if serverlessReady {
		defer serverlessMutex.RUnlock()
		return serverlessMux, serverlessErr
	}
	serverlessMutex.RUnlock()

	serverlessMutex.Lock()
	defer serverlessMutex.Unlock()
	if !serverlessReady {
		env, err := serverlessEnvironment(ctx)
		if err != nil {
			utils.Error("serverless init: %v", err)
			serverlessErr = err
		} else {
			serverlessMux = NewHandler(env)
		}
		serverlessReady = true
	}
	return serverlessMux, serverlessErr
}

func serverlessEnvironment(ctx context.Context) (*templater.Environment, error) {
	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return templater.NewEnvironmentFromConfig(ctx, cfg.Templates)
}

// ResetServerless drops the cached handler so the next request rebuilds it.
func ResetServerless() {
	serverlessMutex.Lock()
	defer serverlessMutex.Unlock()
	serverlessReady = false
	serverlessMux = nil
	serverlessErr = nil
}
