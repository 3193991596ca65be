package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/pipeline"
	"github.com/couchcryptid/quake-map/internal/selection"
)

var errNoSnapshot = errors.New("no feed snapshot loaded yet")

type summaryResponse struct {
	domain.Report
	Entries int      `json:"entries"`
	Skipped int      `json:"skipped"`
	Lines   []string `json:"lines"`
}

type eventResponse struct {
	domain.ClassifiedEvent
	MagnitudeBand  string          `json:"magnitude_band"`
	ThreatRadiusKm float64         `json:"threat_radius_km"`
	Recent         bool            `json:"recent"`
	State          selection.State `json:"state"`
}

type cityResponse struct {
	domain.City
	State selection.State `json:"state"`
}

type locateResponse struct {
	Location domain.Location `json:"location"`
	Country  string          `json:"country,omitempty"`
	OnLand   bool            `json:"on_land"`
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	snap, _, ok := s.current(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summaryResponse{
		Report:  snap.Report,
		Entries: snap.Entries,
		Skipped: len(snap.Skipped),
		Lines:   snap.Report.Lines(s.svc.Boundaries()),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	top := -1
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid top %q", v))
			return
		}
		top = n
	}

	snap, session, ok := s.current(w)
	if !ok {
		return
	}

	view := session.View()
	out := make([]eventResponse, len(snap.Events))
	for i, ev := range snap.Events {
		out[i] = eventResponse{
			ClassifiedEvent: ev,
			MagnitudeBand:   domain.MagnitudeBandOf(ev.Magnitude).String(),
			ThreatRadiusKm:  ev.ThreatRadiusKm(),
			Recent:          ev.Recent(),
			State:           view.Events[i],
		}
	}
	if top >= 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Magnitude > out[j].Magnitude
		})
		out = out[:min(top, len(out))]
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	snap, session, ok := s.current(w)
	if !ok {
		return
	}
	view := session.View()
	out := make([]cityResponse, len(snap.Cities))
	for i, c := range snap.Cities {
		out[i] = cityResponse{City: c, State: view.Cities[i]}
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	country, onLand := s.svc.Locate(loc)
	sharedobs.WriteJSON(w, http.StatusOK, locateResponse{Location: loc, Country: country, OnLand: onLand})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	_, session, ok := s.current(w)
	if !ok {
		return
	}
	session.PointerMove(selection.PointerAt(loc))
	sharedobs.WriteJSON(w, http.StatusOK, session.View())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	_, session, ok := s.current(w)
	if !ok {
		return
	}
	session.PointerClick(selection.PointerAt(loc))
	view := session.View()
	if view.Lock != nil {
		s.metrics.SelectionLocks.WithLabelValues(view.Lock.Kind.String()).Inc()
		s.logger.Debug("marker locked", "kind", view.Lock.Kind, "index", view.Lock.Index)
	}
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

// current returns the published snapshot and its session, writing a 503 when
// the pipeline has not refreshed yet.
func (s *Server) current(w http.ResponseWriter) (*pipeline.Snapshot, *selection.Controller, bool) {
	snap, session := s.svc.Current()
	if snap == nil || session == nil {
		writeError(w, http.StatusServiceUnavailable, errNoSnapshot)
		return nil, nil, false
	}
	return snap, session, true
}

func parseLocation(r *http.Request) (domain.Location, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return domain.Location{}, fmt.Errorf("invalid lat %q", q.Get("lat"))
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return domain.Location{}, fmt.Errorf("invalid lon %q", q.Get("lon"))
	}
	return domain.Location{Lat: lat, Lon: lon}, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
