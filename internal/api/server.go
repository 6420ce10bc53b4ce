// Package api exposes a small local HTTP surface over a facade: tree
// listing, glob search, and job-tracked batch extraction.
package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/wowsunpack/wowsunpack/internal/extract"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
	"github.com/wowsunpack/wowsunpack/internal/query"
	"github.com/wowsunpack/wowsunpack/internal/unpacker"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// Server wraps a fiber app over a single facade.
type Server struct {
	app        *fiber.App
	facade     *unpacker.Facade
	jobs       *JobManager
	maxWorkers int
}

// New builds a Server over facade. maxWorkers bounds the worker pool used
// by every extraction job it starts.
func New(facade *unpacker.Facade, maxWorkers int) *Server {
	s := &Server{
		app:        fiber.New(fiber.Config{DisableStartupMessage: true}),
		facade:     facade,
		jobs:       NewJobManager(),
		maxWorkers: maxWorkers,
	}
	s.routes()
	return s
}

// App returns the underlying fiber.App, e.g. for Listen or Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Get("/tree", s.handleGetTree)
	s.app.Get("/search", s.handleSearch)
	s.app.Post("/extract", s.handlePostExtract)
	s.app.Get("/jobs/:id", s.handleGetJob)
}

func (s *Server) handleGetTree(c *fiber.Ctx) error {
	path := c.Query("path")

	browser, err := s.facade.Browser(c.Context())
	if err != nil {
		return RespondInternalError(c, "Failed to build tree", err.Error())
	}

	if path != "" {
		if err := browser.Navigate(path); err != nil {
			return RespondNotFound(c, "path", err.Error())
		}
	}

	files, err := browser.ListFiles()
	if err != nil {
		return RespondInternalError(c, "Failed to list files", err.Error())
	}
	dirs, err := browser.ListDirectories()
	if err != nil {
		return RespondInternalError(c, "Failed to list directories", err.Error())
	}

	return RespondOK(c, fiber.Map{
		"path":        browser.Path(),
		"files":       files,
		"directories": dirs,
	})
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	glob := c.Query("glob")
	if glob == "" {
		return RespondValidationError(c, "glob query parameter is required", "")
	}

	recs, err := s.facade.Search(c.Context(), glob)
	if err != nil {
		return RespondInternalError(c, "Search failed", err.Error())
	}

	paths := make([]string, 0, len(recs))
	for _, rec := range recs {
		paths = append(paths, rec.Path)
	}
	return RespondOK(c, fiber.Map{"matches": paths})
}

type extractRequest struct {
	Glob string `json:"glob"`
	Path string `json:"path"`
	Dest string `json:"dest"`
}

func (s *Server) handlePostExtract(c *fiber.Ctx) error {
	var req extractRequest
	if err := c.BodyParser(&req); err != nil {
		return RespondValidationError(c, "Invalid JSON body", err.Error())
	}
	if req.Glob == "" && req.Path == "" {
		return RespondValidationError(c, "one of glob or path is required", "")
	}
	if req.Dest == "" {
		return RespondValidationError(c, "dest is required", "")
	}

	tree, err := s.facade.Tree(c.Context())
	if err != nil {
		return RespondInternalError(c, "Failed to build tree", err.Error())
	}

	var recs []idxfile.FileRecord
	if req.Glob != "" {
		recs = query.ResolveGlob(tree, req.Glob)
	} else {
		recs, err = query.ResolveExact(tree, req.Path)
		if err != nil {
			if !errors.Is(err, xerrors.ErrUnknownPath) {
				return RespondInternalError(c, "Failed to resolve path", err.Error())
			}
			slog.WarnContext(c.Context(), "api: extract path not found, extracting nothing", "path", req.Path)
			recs = nil
		}
	}

	extractor := extract.New(s.facade.PkgRoot(), req.Dest)
	job := s.jobs.Start()
	ctx := context.WithoutCancel(c.Context())

	s.jobs.Run(ctx, job, func(ctx context.Context) ([]extract.Outcome, error) {
		return extractor.Batch(ctx, recs, s.maxWorkers), nil
	})

	slog.InfoContext(ctx, "api: extraction job started",
		"job_id", job.ID, "glob", req.Glob, "path", req.Path, "count", len(recs))
	return c.Status(fiber.StatusAccepted).JSON(envelope{Success: true, Data: fiber.Map{"job_id": job.ID}})
}

func (s *Server) handleGetJob(c *fiber.Ctx) error {
	id := c.Params("id")
	job, ok := s.jobs.Snapshot(id)
	if !ok {
		return RespondNotFound(c, "job", id)
	}
	return RespondOK(c, job)
}
