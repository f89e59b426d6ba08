// AngelaMos | 2026
// router.go

package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/middleware"
)

const maxInputBytes = 1 << 20

var (
	callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_rpc_calls_total",
			Help: "Count of RPC procedure calls by procedure and result code.",
		},
		[]string{"procedure", "code"},
	)
	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_rpc_call_duration_seconds",
			Help:    "Latency of RPC procedure calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)
)

func init() {
	prometheus.MustRegister(callsTotal, callDuration)
}

type errorEnvelope struct {
	Success bool           `json:"success"`
	Error   core.ErrorBody `json:"error"`
}

// Router dispatches /{procedure} requests to registered procedures.
type Router struct {
	procedures map[string]Procedure
	validator  *validator.Validate
	logger     *slog.Logger
	tracer     trace.Tracer
}

func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		procedures: make(map[string]Procedure),
		validator:  core.NewValidator(),
		logger:     logger,
		tracer:     core.Tracer("github.com/apptnu/portal/internal/rpc"),
	}
}

// Register adds procedures to the router. Registering the same name twice
// is a programming error and panics.
func (rt *Router) Register(procs ...Procedure) {
	for _, p := range procs {
		if _, exists := rt.procedures[p.Name]; exists {
			panic(fmt.Sprintf("rpc: procedure %q registered twice", p.Name))
		}
		rt.procedures[p.Name] = p
	}
}

func (rt *Router) Names() []string {
	names := make([]string, 0, len(rt.procedures))
	for name := range rt.procedures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (rt *Router) Mount(r chi.Router) {
	r.Get("/{procedure}", rt.ServeHTTP)
	r.Post("/{procedure}", rt.ServeHTTP)
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "procedure")

	proc, ok := rt.procedures[name]
	if !ok {
		core.JSON(w, http.StatusNotFound, errorEnvelope{
			Error: core.ErrorBody{
				Code:    "PROCEDURE_NOT_FOUND",
				Message: fmt.Sprintf("no procedure named %q", name),
			},
		})
		return
	}

	if r.Method != proc.Kind.Method() {
		w.Header().Set("Allow", proc.Kind.Method())
		core.JSON(w, http.StatusMethodNotAllowed, errorEnvelope{
			Error: core.ErrorBody{
				Code: "METHOD_NOT_ALLOWED",
				Message: fmt.Sprintf(
					"%s is a %s and must be called with %s",
					name, proc.Kind, proc.Kind.Method(),
				),
			},
		})
		return
	}

	start := time.Now()
	ctx, span := rt.tracer.Start(r.Context(), "rpc."+name,
		trace.WithAttributes(
			attribute.String("rpc.method", name),
			attribute.String("rpc.kind", proc.Kind.String()),
		),
	)
	defer span.End()

	if caller, ok := middleware.GetCaller(ctx); ok {
		core.TagUser(ctx, caller.UserID)
	}

	out, err := rt.call(ctx, w, r, proc)
	callDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		rt.writeError(ctx, w, name, err)
		return
	}

	callsTotal.WithLabelValues(name, "OK").Inc()
	core.OK(w, out)
}

func (rt *Router) call(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	proc Procedure,
) (any, error) {
	if err := authorize(ctx, proc.Access); err != nil {
		return nil, err
	}

	raw, err := readInput(w, r, proc.Kind)
	if err != nil {
		return nil, err
	}

	return proc.handle(ctx, rt.validator, raw)
}

func readInput(w http.ResponseWriter, r *http.Request, kind Kind) ([]byte, error) {
	if kind == KindQuery {
		return []byte(r.URL.Query().Get("input")), nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInputBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, core.NewAppError(
				core.ErrInvalidInput,
				"request body too large",
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
			)
		}
		return nil, core.NewAppError(
			core.ErrInvalidInput,
			"failed to read request body",
			http.StatusBadRequest,
			"BAD_REQUEST",
		)
	}

	return body, nil
}

func (rt *Router) writeError(
	ctx context.Context,
	w http.ResponseWriter,
	name string,
	err error,
) {
	appErr := toAppError(err)
	callsTotal.WithLabelValues(name, appErr.Code).Inc()

	if appErr.StatusCode >= http.StatusInternalServerError {
		core.SetSpanError(ctx, err)
		rt.logger.ErrorContext(ctx, "rpc procedure failed",
			"procedure", name,
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	} else {
		rt.logger.DebugContext(ctx, "rpc procedure rejected",
			"procedure", name,
			"code", appErr.Code,
			"error", err,
		)
	}

	core.JSON(w, appErr.StatusCode, errorEnvelope{
		Error: core.ErrorBody{Code: appErr.Code, Message: appErr.Message},
	})
}
