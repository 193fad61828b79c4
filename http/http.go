// Package http exposes template rendering, document evaluation and the
// template filters over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/awantoch/contentkit/config"
	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/convert"
	"github.com/awantoch/contentkit/telemetry"
	"github.com/awantoch/contentkit/templater"
	"github.com/awantoch/contentkit/utils"
	"github.com/google/uuid"
)

type server struct {
	env *templater.Environment
}

// NewHandler returns the API mux for env.
func NewHandler(env *templater.Environment) http.Handler {
	s := &server{env: env}
	mux := http.NewServeMux()
	routes := []struct {
		pattern string
		name    string
		handler http.HandlerFunc
	}{
		{constants.RouteRender, "render", s.renderHandler},
		{constants.RouteEvaluate, "evaluate", s.evaluateHandler},
		{constants.RouteFilters, "filters", s.filtersHandler},
		{constants.RouteFilter, "filter", s.filterHandler},
		{constants.RouteHealth, "healthz", healthHandler},
	}
	for _, r := range routes {
		mux.Handle(r.pattern, telemetry.WrapHandler(r.name, r.handler))
	}
	mux.Handle(constants.RouteMetrics, telemetry.MetricsHandler())
	return requestID(mux)
}

// StartServer serves NewHandler(env) on cfg.HTTP until ctx is cancelled.
func StartServer(ctx context.Context, cfg *config.Config, env *templater.Environment) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           NewHandler(env),
		ReadHeaderTimeout: constants.DefaultReadTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("contentkit API listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		utils.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestID propagates X-Request-ID, generating one when absent.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(constants.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), id)))
	})
}

// POST /render { template, variables, autoescape, strict }
func (s *server) renderHandler(w http.ResponseWriter, r *http.Request) {
	body, ok := readObject(w, r)
	if !ok {
		return
	}
	if _, present := body.Get("template"); !present {
		utils.WriteHTTPError(w, constants.ResponseMissingTemplate, http.StatusBadRequest)
		return
	}
	tmpl, err := stringField(body, "template")
	if err != nil {
		utils.WriteHTTPError(w, err.Error(), http.StatusBadRequest)
		return
	}
	vars, err := mappingField(body, "variables")
	if err != nil {
		utils.WriteHTTPError(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := renderOptions(body)
	if err != nil {
		utils.WriteHTTPError(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.env.RenderString(tmpl, vars, opts...)
	if err != nil {
		writeTemplateError(w, r, err)
		return
	}
	utils.InfoCtx(r.Context(), "rendered template", "bytes", len(out))
	resp := convert.NewMap()
	resp.Set("output", out)
	writeJSON(w, r, resp)
}

// POST /evaluate { value, variables, autoescape, strict }
func (s *server) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	body, ok := readObject(w, r)
	if !ok {
		return
	}
	vars, err := mappingField(body, "variables")
	if err != nil {
		utils.WriteHTTPError(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := renderOptions(body)
	if err != nil {
		utils.WriteHTTPError(w, err.Error(), http.StatusBadRequest)
		return
	}
	value, _ := body.Get("value")
	out, err := s.env.EvaluateObject(value, vars, opts...)
	if err != nil {
		writeTemplateError(w, r, err)
		return
	}
	utils.DebugCtx(r.Context(), "evaluated document")
	resp := convert.NewMap()
	resp.Set("value", out)
	writeJSON(w, r, resp)
}

// GET /filters
func (s *server) filtersHandler(w http.ResponseWriter, r *http.Request) {
	resp := convert.NewMap()
	resp.Set("filters", templater.FilterNames())
	writeJSON(w, r, resp)
}

// POST /filters/{name} { value }
func (s *server) filterHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	filter, ok := s.env.Filter(name)
	if !ok {
		utils.WriteHTTPError(w, constants.ResponseUnknownFilter+": "+name, http.StatusNotFound)
		return
	}
	body, ok := readObject(w, r)
	if !ok {
		return
	}
	value, _ := body.Get("value")
	out, err := filter(value)
	if err != nil {
		utils.WarnCtx(r.Context(), "filter failed", "filter", name, "error", err)
		utils.WriteHTTPError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	resp := convert.NewMap()
	resp.Set("output", out)
	writeJSON(w, r, resp)
}

// GET /healthz
func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := convert.NewMap()
	resp.Set("status", constants.ResponseHealthy)
	writeJSON(w, r, resp)
}

// readObject decodes the request body as a JSON object, keeping key order.
func readObject(w http.ResponseWriter, r *http.Request) (*convert.Map, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxRequestBodyBytes))
	if err != nil {
		utils.WriteHTTPError(w, constants.ResponseInvalidRequestBody, http.StatusBadRequest)
		return nil, false
	}
	doc, err := convert.Decode(data)
	if err != nil {
		utils.WriteHTTPError(w, constants.ResponseInvalidRequestBody, http.StatusBadRequest)
		return nil, false
	}
	if doc == nil {
		return convert.NewMap(), true
	}
	m, ok := doc.(*convert.Map)
	if !ok {
		utils.WriteHTTPError(w, constants.ResponseBodyNotObject, http.StatusBadRequest)
		return nil, false
	}
	return m, true
}

func stringField(m *convert.Map, key string) (string, error) {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf(constants.ResponseFieldNotString, key)
	}
	return s, nil
}

func boolField(m *convert.Map, key string) (value, present bool, err error) {
	v, ok := m.Get(key)
	if !ok {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, true, fmt.Errorf(constants.ResponseFieldNotBool, key)
	}
	return b, true, nil
}

// renderOptions reads the optional autoescape and strict flags.
func renderOptions(body *convert.Map) ([]templater.RenderOption, error) {
	var opts []templater.RenderOption
	escape, present, err := boolField(body, "autoescape")
	if err != nil {
		return nil, err
	}
	if present && !escape {
		opts = append(opts, templater.WithoutAutoescape())
	}
	strict, _, err := boolField(body, "strict")
	if err != nil {
		return nil, err
	}
	if strict {
		opts = append(opts, templater.WithStrictEvaluation())
	}
	return opts, nil
}

func mappingField(m *convert.Map, key string) (map[string]any, error) {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return map[string]any{}, nil
	}
	om, ok := v.(*convert.Map)
	if !ok {
		return nil, fmt.Errorf(constants.ResponseFieldNotMapping, key)
	}
	vars := make(map[string]any, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		vars[pair.Key] = pair.Value
	}
	return vars, nil
}

func writeTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	if templater.IsSyntaxError(err) {
		utils.WarnCtx(r.Context(), "template syntax error", "error", err)
		utils.WriteHTTPError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if templater.IsEvaluationError(err) {
		utils.WarnCtx(r.Context(), "template evaluation error", "error", err)
		utils.WriteHTTPError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if errors.Is(err, templater.ErrCyclicValue) || errors.Is(err, templater.ErrMaxDepth) {
		utils.WriteHTTPError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	utils.ErrorCtx(r.Context(), "render failed", "error", err)
	utils.WriteHTTPError(w, constants.ResponseInternalError, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	if err := utils.WriteHTTPJSON(w, v); err != nil {
		utils.ErrorCtx(r.Context(), constants.LogFailedEncodeResponse, "error", err)
	}
}
