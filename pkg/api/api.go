// Package api implements the REST surface of the style expression service:
// expression CRUD plus evaluation endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flywave/flywave-style/pkg/expr"
	"github.com/flywave/flywave-style/pkg/store"
	"github.com/flywave/flywave-style/pkg/style"
	"github.com/flywave/flywave-style/pkg/types"
)

// Server is the HTTP server for the expression service.
type Server struct {
	app   *fiber.App
	store *store.Store
}

// New creates a new API server over the given store.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	// Expressions API
	app.Put("/v1/expressions/:name", srv.putExpression)
	app.Get("/v1/expressions/:name", srv.getExpression)
	app.Get("/v1/expressions", srv.listExpressions)
	app.Delete("/v1/expressions/:name", srv.deleteExpression)

	// Evaluation API
	app.Post("/v1/expressions/:name\\:evaluate", srv.evaluateStored)
	app.Post("/v1/evaluate", srv.evaluateInline)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func apiError(c *fiber.Ctx, code int, status, msg string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": msg,
			"status":  status,
		},
	})
}

// --- Expression Handlers ---

type putExpressionRequest struct {
	Expr json.RawMessage `json:"expr"`
}

func (s *Server) putExpression(c *fiber.Ctx) error {
	name := c.Params("name")

	var req putExpressionRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if len(req.Expr) == 0 {
		return apiError(c, 400, "INVALID_ARGUMENT", "expr is required")
	}

	parsed, err := expr.Parse(req.Expr)
	if err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid expression: %v", err))
	}

	entry := s.store.Put(name, req.Expr, parsed)
	return c.JSON(expressionToJSON(entry))
}

func (s *Server) getExpression(c *fiber.Ctx) error {
	name := c.Params("name")
	entry, ok := s.store.Get(name)
	if !ok {
		return apiError(c, 404, "NOT_FOUND", fmt.Sprintf("expression '%s' not found", name))
	}
	return c.JSON(expressionToJSON(entry))
}

func (s *Server) listExpressions(c *fiber.Ctx) error {
	entries := s.store.List()
	out := make([]fiber.Map, len(entries))
	for i, entry := range entries {
		out[i] = expressionToJSON(entry)
	}
	return c.JSON(fiber.Map{"expressions": out})
}

func (s *Server) deleteExpression(c *fiber.Ctx) error {
	name := c.Params("name")
	if !s.store.Delete(name) {
		return apiError(c, 404, "NOT_FOUND", fmt.Sprintf("expression '%s' not found", name))
	}
	return c.JSON(fiber.Map{})
}

func expressionToJSON(entry *store.Expression) fiber.Map {
	return fiber.Map{
		"name":       entry.Name,
		"expr":       entry.Source,
		"revisionId": entry.RevisionID,
		"createTime": entry.CreateTime.UTC().Format(time.RFC3339Nano),
		"updateTime": entry.UpdateTime.UTC().Format(time.RFC3339Nano),
	}
}

// --- Evaluation Handlers ---

type evaluateRequest struct {
	Expr    json.RawMessage        `json:"expr,omitempty"`
	Env     map[string]interface{} `json:"env"`
	Scope   string                 `json:"scope,omitempty"`
	Strict  bool                   `json:"strict,omitempty"`
	Default interface{}            `json:"default,omitempty"`
}

func parseScope(s string) (expr.Scope, error) {
	switch s {
	case "", "value":
		return expr.ValueScope, nil
	case "dynamic":
		return expr.DynamicScope, nil
	default:
		return 0, fmt.Errorf("unknown scope %q (want \"value\" or \"dynamic\")", s)
	}
}

func (s *Server) evaluateStored(c *fiber.Ctx) error {
	name := c.Params("name")
	entry, ok := s.store.Get(name)
	if !ok {
		return apiError(c, 404, "NOT_FOUND", fmt.Sprintf("expression '%s' not found", name))
	}

	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	return s.runEvaluation(c, entry.Expr, &req)
}

func (s *Server) evaluateInline(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if len(req.Expr) == 0 {
		return apiError(c, 400, "INVALID_ARGUMENT", "expr is required")
	}
	parsed, err := expr.Parse(req.Expr)
	if err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid expression: %v", err))
	}
	return s.runEvaluation(c, parsed, &req)
}

func (s *Server) runEvaluation(c *fiber.Ctx, e expr.Expr, req *evaluateRequest) error {
	scope, err := parseScope(req.Scope)
	if err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", err.Error())
	}

	ctx := style.EvalContext{
		Env:    expr.EnvFromGo(req.Env),
		Cache:  make(map[expr.Expr]types.Value),
		Scope:  scope,
		Strict: req.Strict,
	}
	def := types.Null
	if req.Default != nil {
		def = types.FromGo(req.Default)
	}

	result, err := style.EvaluateAttr(ctx, e, def)
	if err != nil {
		var evalErr *types.EvalError
		if errors.As(err, &evalErr) {
			tags := make([]string, len(evalErr.Tags))
			copy(tags, evalErr.Tags)
			return c.Status(422).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    422,
					"message": evalErr.Message,
					"status":  "FAILED_PRECONDITION",
					"tags":    tags,
				},
			})
		}
		return apiError(c, 500, "INTERNAL", err.Error())
	}

	if result.IsDeferred() {
		node, _ := result.AsDeferred().(json.Marshaler)
		raw := json.RawMessage("null")
		if node != nil {
			if b, err := node.MarshalJSON(); err == nil {
				raw = b
			}
		}
		return c.JSON(fiber.Map{"deferred": raw})
	}
	return c.JSON(fiber.Map{"result": result})
}
