package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/buscajob/buscajob/internal/cache"
	"github.com/buscajob/buscajob/internal/model"
	"github.com/buscajob/buscajob/internal/snapshot"
)

const maxBodyBytes = 1 << 20

// postingView adds the stable posting id clients use with /api/salvar-vaga.
type postingView struct {
	ID string `json:"id"`
	model.JobPosting
}

func viewPostings(postings []model.JobPosting) []postingView {
	out := make([]postingView, 0, len(postings))
	for _, p := range postings {
		out = append(out, postingView{ID: p.ID(), JobPosting: p})
	}
	return out
}

// decodeBody reports false and answers 400 when the body is missing or not
// valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, missing string) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case errors.Is(err, io.EOF):
		respondError(w, http.StatusBadRequest, missing)
		return false
	case err != nil:
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "BuscaJob API",
		"endpoints": []string{
			"/api/buscar-vagas",
			"/api/sites",
			"/api/health",
			"/api/estatisticas",
			"/api/ultimo-resultado",
			"/api/salvar-configuracao",
			"/api/configuracoes",
			"/api/salvar-vaga",
			"/api/exportar-vagas",
			"/api/relatorio-fixo",
			"/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	sites := s.deps.Searcher.Sites()
	respondJSON(w, http.StatusOK, map[string]any{"sites": sites, "total": len(sites)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"estatisticas": s.deps.Stats.Snapshot(),
	})
}

func (s *Server) cleanupOldFiles() {
	if _, err := s.deps.Sink.Cleanup(s.now()); err != nil {
		s.logger.Warn("failed to clean up old result files", "error", err)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.cleanupOldFiles()

	var criteria model.SearchCriteria
	if !decodeBody(w, r, &criteria, "search criteria not provided") {
		return
	}
	if err := criteria.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("search requested", "role", criteria.Role, "sites", criteria.Sites)
	postings, err := s.deps.Searcher.Run(r.Context(), criteria)
	if err != nil {
		s.logger.Error("search failed", "role", criteria.Role, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := s.now()
	s.deps.Stats.RecordSearch(len(postings))
	if err := s.deps.Cache.Put(r.Context(), cache.Result{Timestamp: now, Criteria: criteria, Postings: postings}); err != nil {
		s.logger.Error("caching search result failed", "error", err)
	}
	if _, err := s.deps.Sink.Save(criteria, postings); err != nil {
		s.logger.Error("saving search result failed", "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"vagas":     viewPostings(postings),
		"total":     len(postings),
		"timestamp": now.Format(time.RFC3339),
	})
}

func (s *Server) handleLatestResult(w http.ResponseWriter, r *http.Request) {
	name, res, err := s.deps.Sink.Latest()
	if errors.Is(err, model.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no result file found")
		return
	}
	if err != nil {
		s.logger.Error("loading latest result failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load result file")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"vagas":   viewPostings(res.Postings),
		"total":   len(res.Postings),
		"arquivo": name,
	})
}

func (s *Server) handleSaveCriteria(w http.ResponseWriter, r *http.Request) {
	var criteria model.SearchCriteria
	if !decodeBody(w, r, &criteria, "configuration not provided") {
		return
	}
	if err := criteria.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.deps.Store.SaveCriteria(r.Context(), criteria)
	if err != nil {
		s.logger.Error("saving criteria failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.logger.Info("criteria saved", "config_id", saved.ID)
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"config_id": saved.ID,
		"message":   "configuration saved",
	})
}

func (s *Server) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	configs, err := s.deps.Store.ListCriteria(r.Context())
	if err != nil {
		s.logger.Error("listing criteria failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "configuracoes": configs})
}

func (s *Server) handleSaveFavorite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PostingID string `json:"vaga_id"`
	}
	if !decodeBody(w, r, &body, "posting id not provided") {
		return
	}
	id := strings.TrimSpace(body.PostingID)
	if id == "" {
		respondError(w, http.StatusBadRequest, "posting id not provided")
		return
	}

	isNew, err := s.deps.Store.SaveFavorite(r.Context(), id)
	if err != nil {
		s.logger.Error("saving favorite failed", "vaga_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if isNew {
		s.deps.Stats.RecordSaved()
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "message": "posting saved"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Format string `json:"formato"`
	}
	// An empty body exports JSON.
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	latest, err := s.deps.Cache.Latest(r.Context())
	if errors.Is(err, model.ErrNotFound) {
		respondError(w, http.StatusBadRequest, "no result to export")
		return
	}
	if err != nil {
		s.logger.Error("loading cached result failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	name, err := s.deps.Sink.Export(latest.Postings, body.Format)
	if errors.Is(err, snapshot.ErrUnsupportedFormat) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("export failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": name,
		"message":  "file " + name + " created",
	})
}

func (s *Server) handleFixedReport(w http.ResponseWriter, r *http.Request) {
	s.cleanupOldFiles()

	res, err := s.deps.Report.Generate(r.Context())
	if err != nil {
		s.logger.Error("fixed report failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"arquivo":         res.File,
		"total":           res.Total,
		"total_consultas": res.Queries,
		"email_enviado":   res.EmailSent,
		"email_erro":      res.EmailError,
		"vagas":           viewPostings(res.Postings),
	})
}
