package server

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/qivalidate/pkg/buildinfo"
	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/partition"
	"github.com/matzehuels/qivalidate/pkg/qi"
	"github.com/matzehuels/qivalidate/pkg/validate"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

type validateRequest struct {
	Graph     *graph.Document `json:"graph" validate:"required_without=Path,excluded_with=Path"`
	Path      string          `json:"path" validate:"required_without=Graph,max=500"`
	Name      string          `json:"name" validate:"max=200"`
	Seed      *uint64         `json:"seed"`
	CriticalK int             `json:"critical_k" validate:"gte=0"`
	MaxSteps  int             `json:"max_steps" validate:"gte=0"`
	NoCache   bool            `json:"no_cache"`
	Save      bool            `json:"save"`
}

type qiRequest struct {
	Graph     *graph.Document `json:"graph" validate:"required"`
	Labels    []int           `json:"labels" validate:"required,min=1,dive,gte=0"`
	Threshold int             `json:"threshold" validate:"gte=0"`
	NoCache   bool            `json:"no_cache"`
}

type qiResponse struct {
	Blocks   int       `json:"blocks"`
	Result   qi.Result `json:"result"`
	CacheHit bool      `json:"cache_hit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, envelope{
		"status": "available",
		"build":  buildinfo.Get(),
		"engine": s.runner.Engine.Signature(),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Save && s.reports == nil {
		s.fail(w, r, errors.New(errors.ErrCodeUnsupported, "report storage is not configured"))
		return
	}

	g, name, err := s.loadGraph(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := validate.Options{
		Name:      name,
		CriticalK: req.CriticalK,
		MaxSteps:  req.MaxSteps,
		NoCache:   req.NoCache,
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}

	rep, err := s.runner.Run(r.Context(), g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Save {
		if err := s.reports.Save(r.Context(), rep); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, envelope{"data": rep})
}

// toGraph builds an inline graph, refusing oversized ones before the
// adjacency rows are allocated.
func (s *Server) toGraph(doc *graph.Document) (*graph.Graph, error) {
	if err := s.checkVertices(doc.Vertices); err != nil {
		return nil, err
	}
	return doc.ToGraph()
}

func (s *Server) checkVertices(n int) error {
	if n > s.cfg.MaxVertices {
		return errors.New(errors.ErrCodeCapacityExceeded, "graph has %d vertices, the server accepts at most %d", n, s.cfg.MaxVertices)
	}
	return nil
}

// loadGraph returns the inline graph or reads the file under GraphDir.
func (s *Server) loadGraph(req validateRequest) (*graph.Graph, string, error) {
	if req.Graph != nil {
		g, err := s.toGraph(req.Graph)
		return g, req.Name, err
	}
	if err := errors.ValidatePath(req.Path); err != nil {
		return nil, "", err
	}
	if err := errors.ValidateGraphFilename(filepath.Base(req.Path)); err != nil {
		return nil, "", err
	}
	g, skipped, err := graph.ReadGraphFile(filepath.Join(s.cfg.GraphDir, filepath.FromSlash(req.Path)))
	if err != nil {
		return nil, "", err
	}
	if err := s.checkVertices(g.NumVertices()); err != nil {
		return nil, "", err
	}
	if len(skipped) > 0 {
		s.logger.Warn("skipped invalid edges", "path", req.Path, "count", len(skipped))
	}
	name := req.Name
	if name == "" {
		name = req.Path
	}
	return g, name, nil
}

func (s *Server) handleQi(w http.ResponseWriter, r *http.Request) {
	var req qiRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.toGraph(req.Graph)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := errors.ValidateLabels(req.Labels, g.NumVertices()); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := partition.FromLabels(req.Labels)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// An exact request has no oracle path to fall back on.
	if req.Threshold == 0 && p.NumBlocks() > s.runner.Engine.Limit() {
		s.fail(w, r, errors.New(errors.ErrCodeCapacityExceeded,
			"exact qi needs at most %d blocks, partition has %d; pass a threshold", s.runner.Engine.Limit(), p.NumBlocks()))
		return
	}

	res, hit := s.runner.Qi(r.Context(), g, validate.GraphHash(g), p, req.Threshold, req.NoCache)
	s.writeJSON(w, http.StatusOK, envelope{"data": qiResponse{
		Blocks:   p.NumBlocks(),
		Result:   res,
		CacheHit: hit,
	}})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.fail(w, r, errors.New(errors.ErrCodeUnsupported, "report storage is not configured"))
		return
	}
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be an integer between 1 and %d", maxListLimit))
			return
		}
		limit = n
	}
	reps, err := s.reports.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"data": reps, "count": len(reps)})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.fail(w, r, errors.New(errors.ErrCodeUnsupported, "report storage is not configured"))
		return
	}
	rep, err := s.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"data": rep})
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.fail(w, r, errors.New(errors.ErrCodeUnsupported, "report storage is not configured"))
		return
	}
	if err := s.reports.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
