package server

import (
	"context"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/synvisio/pkg/buildinfo"
	"github.com/matzehuels/synvisio/pkg/dataset"
	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/genome"
	"github.com/matzehuels/synvisio/pkg/perm"
	"github.com/matzehuels/synvisio/pkg/pipeline"
	"github.com/matzehuels/synvisio/pkg/session"
	"github.com/matzehuels/synvisio/pkg/solutions"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type sessionView struct {
	ID          string    `json:"id"`
	Dataset     string    `json:"dataset"`
	Order       []string  `json:"order"`
	Flipped     []string  `json:"flipped,omitempty"`
	Chromosomes int       `json:"chromosomes"`
	Chords      int       `json:"chords"`
	Solutions   int       `json:"solutions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func viewOf(sess *session.Session) sessionView {
	return sessionView{
		ID:          sess.ID,
		Dataset:     sess.Dataset.Name,
		Order:       sess.Order,
		Flipped:     sess.Flipped.IDs(),
		Chromosomes: len(sess.Dataset.Chromosomes),
		Chords:      len(sess.Dataset.Chords),
		Solutions:   sess.Solutions.Len(),
		ExpiresAt:   sess.ExpiresAt,
	}
}

func view(sess *session.Session) any { return viewOf(sess) }

type layoutRequest struct {
	Order   []string `json:"order"`
	Flipped []string `json:"flipped"`
}

type swapsRequest struct {
	Target  []string `json:"target"`
	Current []string `json:"current"`
}

type swapsResponse struct {
	Swaps []perm.Swap `json:"swaps"`
	Moved []string    `json:"moved"`
}

type optimizeRequest struct {
	pipeline.Options
	// Apply adopts the result as the session's layout.
	Apply bool `json:"apply,omitempty"`
}

type optimizeResponse struct {
	*pipeline.Result
	Cached  bool `json:"cached"`
	Applied bool `json:"applied"`
}

type collisionsResponse struct {
	*pipeline.CollisionResult
	Cached bool `json:"cached"`
}

type saveResponse struct {
	Saved     bool `json:"saved"`
	Solutions int  `json:"solutions"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleSwaps(w http.ResponseWriter, r *http.Request) {
	var req swapsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := perm.Check(req.Target, req.Current); err != nil {
		writeError(w, err)
		return
	}
	swaps := perm.MinSwaps(req.Target, req.Current)
	writeJSON(w, http.StatusOK, swapsResponse{Swaps: swaps, Moved: perm.Moved(swaps)})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	format := dataset.FormatJSON
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt == "application/toml" {
		format = dataset.FormatTOML
	}
	ds, err := dataset.Decode(r.Body, format)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := session.New(ds, s.ttl)
	s.restoreSolutions(r.Context(), sess)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeStorage, err, "store session"))
		return
	}
	s.logger.Info("session created", "id", sess.ID, "dataset", ds.Name, "chromosomes", len(ds.Chromosomes), "chords", len(ds.Chords))
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), sess.ID); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeStorage, err, "delete session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sess.Reset()
	s.save(w, r, sess, view)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req layoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Order == nil {
		req.Order = sess.Order
	}
	lengths := sess.Dataset.Chromosomes.Lengths()
	for _, id := range req.Flipped {
		if _, ok := lengths[id]; !ok {
			writeError(w, errors.New(errors.ErrCodeInvalidArrangement, "unknown chromosome %q", id))
			return
		}
	}
	if err := sess.Apply(req.Order, genome.NewFlipped(req.Flipped...)); err != nil {
		writeError(w, err)
		return
	}
	s.save(w, r, sess, view)
}

func (s *Server) handleCollisions(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, hit, err := s.runner.Collisions(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collisionsResponse{CollisionResult: res, Cached: hit})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req optimizeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.optimizeTimeout)
	defer cancel()
	res, hit, err := s.runner.Optimize(ctx, sess, req.Options)
	if err != nil && (res == nil || !res.Cancelled) {
		writeError(w, err)
		return
	}
	if err != nil {
		s.logger.Warn("optimizer stopped early", "id", sess.ID, "err", err)
	}

	applied := false
	if req.Apply && !res.Cancelled {
		if err := sess.Apply(res.Order, genome.NewFlipped(res.Flipped...)); err != nil {
			writeError(w, err)
			return
		}
		applied = true
	}
	s.archiveSolutions(r.Context(), sess)
	s.save(w, r, sess, func(*session.Session) any {
		return optimizeResponse{Result: res, Cached: hit, Applied: applied}
	})
}

func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Solutions.Snapshot(sess.Dataset.Name))
}

func (s *Server) handleSaveSolution(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.runner.SaveCurrent(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	if saved {
		s.archiveSolutions(r.Context(), sess)
	}
	s.save(w, r, sess, func(sess *session.Session) any {
		return saveResponse{Saved: saved, Solutions: sess.Solutions.Len()}
	})
}

// =============================================================================
// Helpers
// =============================================================================

// load fetches the session named in the URL.
func (s *Server) load(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load session")
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return sess, nil
}

// save writes the session back and responds with body(sess).
func (s *Server) save(w http.ResponseWriter, r *http.Request, sess *session.Session, body func(*session.Session) any) {
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeStorage, err, "store session"))
		return
	}
	writeJSON(w, http.StatusOK, body(sess))
}

// restoreSolutions seeds a new session with the archived solutions of its
// dataset.
func (s *Server) restoreSolutions(ctx context.Context, sess *session.Session) {
	if s.archive == nil || sess.Dataset.Name == "" {
		return
	}
	snap, err := s.archive.Load(ctx, sess.Dataset.Name)
	if err != nil {
		s.logger.Warn("cannot load archived solutions", "dataset", sess.Dataset.Name, "err", err)
		return
	}
	if n := sess.Solutions.Restore(snap); n > 0 {
		s.logger.Debug("restored solutions", "dataset", sess.Dataset.Name, "entries", n)
	}
}

// archiveSolutions merges the session's solutions into the archive.
func (s *Server) archiveSolutions(ctx context.Context, sess *session.Session) {
	if s.archive == nil || sess.Dataset.Name == "" {
		return
	}
	if err := solutions.Merge(ctx, s.archive, sess.Solutions.Snapshot(sess.Dataset.Name)); err != nil {
		s.logger.Warn("cannot archive solutions", "dataset", sess.Dataset.Name, "err", err)
	}
}
