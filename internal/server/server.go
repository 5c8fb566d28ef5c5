package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"channelos/internal/config"
	"channelos/internal/domain"
	"channelos/internal/engine"
)

// Config for the HTTP API handler.
type Config struct {
	Engine    engine.Engine
	BasePath  string
	RateLimit config.RateLimit
	Logger    *slog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"workflow item 3f2a: not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true" example:"{\"field\":\"deadline\"}"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

var bodyValidator = validator.New()

// New returns an HTTP handler exposing the Channel OS API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))
	router.Use(newRateLimiter(cfg.RateLimit).middleware)

	hcfg := huma.DefaultConfig("Channel OS API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerInput(group, cfg.Engine)
	registerIdeas(group, cfg.Engine)
	registerTitles(group, cfg.Engine)
	registerScript(group, cfg.Engine)
	registerWorkflow(group, cfg.Engine)
	registerRecipes(group, cfg.Engine)
	registerEvents(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return newAPIError(http.StatusBadRequest, "bad_request", "request validation failed", map[string]any{"fields": fields})
	case errors.Is(err, engine.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, engine.ErrInvalid):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, engine.ErrNoIdeas):
		return newAPIError(http.StatusConflict, "no_ideas", err.Error(), nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
	}
}

func checkBody(v any) error {
	return bodyValidator.Struct(v)
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.LogAttrs(r.Context(), slog.LevelDebug, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get(path.Join(basePath, "docs"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var (
		once sync.Once
		spec []byte
	)
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			spec, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.Schemas != nil {
		oas.Components.Schemas.Map()["ApiError"] = &huma.Schema{
			Type: "object",
			Properties: map[string]*huma.Schema{
				"error": {
					Type: "object",
					Properties: map[string]*huma.Schema{
						"code":    {Type: "string"},
						"message": {Type: "string"},
						"details": {Type: "object"},
					},
				},
			},
		}
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Channel OS API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerInput(api huma.API, e engine.Engine) {
	type inputOutput struct {
		Body domain.IdeaInput `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-input",
		Method:      http.MethodGet,
		Path:        "/input",
		Summary:     "Current idea input",
	}, func(ctx context.Context, _ *struct{}) (*inputOutput, error) {
		return &inputOutput{Body: e.Input(ctx)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "put-input",
		Method:      http.MethodPut,
		Path:        "/input",
		Summary:     "Replace idea input",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body domain.IdeaInput `json:"body"`
	}) (*inputOutput, error) {
		return &inputOutput{Body: e.SetInput(ctx, input.Body)}, nil
	})
}

func registerIdeas(api huma.API, e engine.Engine) {
	type ideasOutput struct {
		Body IdeasResponse `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "suggest-ideas",
		Method:      http.MethodPost,
		Path:        "/ideas/suggest",
		Summary:     "Preview an idea batch for the current input",
	}, func(ctx context.Context, _ *struct{}) (*ideasOutput, error) {
		return &ideasOutput{Body: ideasResponse(e.SuggestIdeas(ctx))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "lock-ideas",
		Method:      http.MethodPost,
		Path:        "/ideas/lock",
		Summary:     "Lock an idea batch and merge it onto the board",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body LockResponse `json:"body"`
	}, error) {
		res := e.LockIdeas(ctx)
		return &struct {
			Body LockResponse `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-ideas",
		Method:      http.MethodGet,
		Path:        "/ideas",
		Summary:     "Locked ideas",
	}, func(ctx context.Context, _ *struct{}) (*ideasOutput, error) {
		return &ideasOutput{Body: ideasResponse(e.Ideas(ctx))}, nil
	})
}

func registerTitles(api huma.API, e engine.Engine) {
	type historyOutput struct {
		Body TitleHistoryResponse `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "score-title",
		Method:      http.MethodPost,
		Path:        "/titles/score",
		Summary:     "Score a working title",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body TitleRequest `json:"body"`
	}) (*struct {
		Body domain.TitleEvaluation `json:"body"`
	}, error) {
		if err := checkBody(input.Body); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.TitleEvaluation `json:"body"`
		}{Body: e.ScoreTitle(ctx, input.Body.Title)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "title-history",
		Method:      http.MethodGet,
		Path:        "/titles/history",
		Summary:     "Recent title iterations",
	}, func(ctx context.Context, _ *struct{}) (*historyOutput, error) {
		return &historyOutput{Body: historyResponse(e.TitleHistory(ctx))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "log-title",
		Method:      http.MethodPost,
		Path:        "/titles/history",
		Summary:     "Record a title iteration",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body TitleRequest `json:"body"`
	}) (*historyOutput, error) {
		if err := checkBody(input.Body); err != nil {
			return nil, handleError(err)
		}
		return &historyOutput{Body: historyResponse(e.LogTitle(ctx, input.Body.Title))}, nil
	})
}

func registerScript(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "script-outline",
		Method:      http.MethodGet,
		Path:        "/script",
		Summary:     "Script outline for a locked idea",
		Errors:      []int{http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Title string `query:"title"`
	}) (*struct {
		Body domain.ScriptOutline `json:"body"`
	}, error) {
		outline, err := e.Outline(ctx, input.Title)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.ScriptOutline `json:"body"`
		}{Body: outline}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "schedule",
		Method:      http.MethodGet,
		Path:        "/schedule",
		Summary:     "Release plan for the locked ideas",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ScheduleResponse `json:"body"`
	}, error) {
		items := e.Schedule(ctx)
		if items == nil {
			items = []domain.ScheduleEntry{}
		}
		return &struct {
			Body ScheduleResponse `json:"body"`
		}{Body: ScheduleResponse{Items: items}}, nil
	})
}

func registerWorkflow(api huma.API, e engine.Engine) {
	type itemOutput struct {
		Body domain.WorkflowItem `json:"body"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "list-workflow",
		Method:      http.MethodGet,
		Path:        "/workflow",
		Summary:     "Board cards in stored order",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body WorkflowResponse `json:"body"`
	}, error) {
		return &struct {
			Body WorkflowResponse `json:"body"`
		}{Body: workflowResponse(e.Workflow(ctx))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "workflow-board",
		Method:      http.MethodGet,
		Path:        "/workflow/board",
		Summary:     "Board cards grouped by phase",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body BoardResponse `json:"body"`
	}, error) {
		return &struct {
			Body BoardResponse `json:"body"`
		}{Body: BoardResponse{Columns: e.Board(ctx)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-workflow-item",
		Method:      http.MethodGet,
		Path:        "/workflow/{id}",
		Summary:     "Get a board card",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*itemOutput, error) {
		item, err := e.Item(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &itemOutput{Body: item}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-workflow-item",
		Method:      http.MethodPost,
		Path:        "/workflow/{id}/move",
		Summary:     "Move a card one phase forward or back",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string      `path:"id"`
		Body MoveRequest `json:"body"`
	}) (*struct {
		Body MoveResponse `json:"body"`
	}, error) {
		if err := checkBody(input.Body); err != nil {
			return nil, handleError(err)
		}
		res, err := e.MovePhase(ctx, input.ID, input.Body.Delta)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MoveResponse `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-checklist",
		Method:      http.MethodPost,
		Path:        "/workflow/{id}/checklist",
		Summary:     "Toggle a checklist entry",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string           `path:"id"`
		Body ChecklistRequest `json:"body"`
	}) (*itemOutput, error) {
		if err := checkBody(input.Body); err != nil {
			return nil, handleError(err)
		}
		item, err := e.ToggleChecklist(ctx, input.ID, input.Body.Label)
		if err != nil {
			return nil, handleError(err)
		}
		return &itemOutput{Body: item}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-deadline",
		Method:      http.MethodPut,
		Path:        "/workflow/{id}/deadline",
		Summary:     "Set a card deadline",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string          `path:"id"`
		Body DeadlineRequest `json:"body"`
	}) (*itemOutput, error) {
		if err := checkBody(input.Body); err != nil {
			return nil, handleError(err)
		}
		item, err := e.UpdateDeadline(ctx, input.ID, input.Body.Deadline)
		if err != nil {
			return nil, handleError(err)
		}
		return &itemOutput{Body: item}, nil
	})
}

func registerRecipes(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-recipes",
		Method:      http.MethodGet,
		Path:        "/recipes",
		Summary:     "Automation playbooks",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body RecipesResponse `json:"body"`
	}, error) {
		return &struct {
			Body RecipesResponse `json:"body"`
		}{Body: RecipesResponse{Items: e.Recipes()}}, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List recent events",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Type  string `query:"type"`
		Limit int    `query:"limit" default:"50" minimum:"1" maximum:"500"`
	}) (*struct {
		Body EventsResponse `json:"body"`
	}, error) {
		items, err := e.RecentEvents(ctx, input.Limit, input.Type)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body EventsResponse `json:"body"`
		}{Body: EventsResponse{Items: items}}, nil
	})
}
