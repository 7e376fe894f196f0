package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fretnav/api/internal/model"
	"github.com/fretnav/api/internal/theory"
)

// fretMarkers are the inlay positions; 12 carries a double dot.
var fretMarkers = []model.FretMarker{
	{Fret: 3}, {Fret: 5}, {Fret: 7}, {Fret: 9}, {Fret: 12, Double: true}, {Fret: 15},
	{Fret: 17}, {Fret: 19}, {Fret: 21}, {Fret: 24, Double: true},
}

// FretboardService lays theory results out as fretboard grids
type FretboardService struct {
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewFretboardService creates the service. A nil client or zero TTL disables
// caching.
func NewFretboardService(redisClient *redis.Client, cacheTTL time.Duration) *FretboardService {
	return &FretboardService{
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

// Build returns the fretboard for req, served from cache when possible.
func (s *FretboardService) Build(ctx context.Context, req *model.FretboardRequest) (*model.Fretboard, error) {
	view := *req
	view.Normalize()

	if fb := s.cached(ctx, &view); fb != nil {
		return fb, nil
	}

	fb, err := s.Render(&view)
	if err != nil {
		return nil, err
	}

	s.store(ctx, &view, fb)
	return fb, nil
}

// Render computes the fretboard without touching the cache.
func (s *FretboardService) Render(req *model.FretboardRequest) (*model.Fretboard, error) {
	view := *req
	view.Normalize()

	tuning, err := theory.LookupTuning(theory.Instrument(view.Instrument), view.Strings, view.Tuning)
	if err != nil {
		return nil, err
	}

	var pattern *theory.Pattern
	if view.Pattern != "" {
		p, err := theory.LookupPattern(view.Pattern)
		if err != nil {
			return nil, err
		}
		pattern = &p
	}

	if view.Root != "" {
		if _, err := theory.IndexOf(view.Root); err != nil {
			return nil, err
		}
	}

	fb := &model.Fretboard{
		Instrument: view.Instrument,
		Tuning:     tuning,
		Root:       view.Root,
		Pattern:    pattern,
		Display:    view.Display,
		Spelling:   view.Spelling,
		Frets:      view.Frets,
		Markers:    markersFor(view.Frets),
	}

	// Highest string first, matching how the neck reads from the player's view.
	for i := len(tuning.Notes) - 1; i >= 0; i-- {
		row, err := buildString(&view, pattern, tuning.Notes[i], len(tuning.Notes)-i)
		if err != nil {
			return nil, err
		}
		fb.Strings = append(fb.Strings, row)
	}

	return fb, nil
}

func buildString(view *model.FretboardRequest, pattern *theory.Pattern, open theory.Note, number int) (model.StringRow, error) {
	openLabel, err := label(view, open.Name())
	if err != nil {
		return model.StringRow{}, err
	}
	row := model.StringRow{
		Number: number,
		Open:   open,
		Label:  openLabel,
		Cells:  make([]model.Cell, 0, view.Frets),
	}

	for fret := 0; fret < view.Frets; fret++ {
		name, err := theory.PitchAtFret(open.Name(), fret)
		if err != nil {
			return model.StringRow{}, err
		}
		sounding, err := open.Transpose(fret)
		if err != nil {
			return model.StringRow{}, err
		}
		pc, err := theory.IndexOf(name)
		if err != nil {
			return model.StringRow{}, err
		}

		cell := model.Cell{
			Fret:   fret,
			Pitch:  pc.Spell(theory.Spelling(view.Spelling)),
			Octave: sounding.Octave,
		}

		if view.Root != "" {
			interval, err := theory.Interval(name, view.Root)
			if err != nil {
				return model.StringRow{}, err
			}
			cell.Interval = &interval
			cell.IsRoot = interval == 0
			if pattern != nil {
				cell.InPattern = pattern.Contains(interval)
			}
		}

		if cell.Label, err = label(view, name); err != nil {
			return model.StringRow{}, err
		}
		row.Cells = append(row.Cells, cell)
	}

	return row, nil
}

// label is the text shown for a pitch: its spelled name, or its landmark
// number when degrees are displayed and a root is chosen.
func label(view *model.FretboardRequest, name string) (string, error) {
	pc, err := theory.IndexOf(name)
	if err != nil {
		return "", err
	}
	spelled := pc.Spell(theory.Spelling(view.Spelling))
	if view.Display != model.DisplayDegrees {
		return spelled, nil
	}
	d, err := theory.Degree(name, view.Root)
	if err != nil {
		return "", err
	}
	if d.IsDegree() {
		return d.String(), nil
	}
	return spelled, nil
}

func markersFor(frets int) []model.FretMarker {
	var out []model.FretMarker
	for _, m := range fretMarkers {
		if m.Fret < frets {
			out = append(out, m)
		}
	}
	return out
}

// Cache helpers

func cacheKey(v *model.FretboardRequest) string {
	return fmt.Sprintf("fretboard:%s:%d:%s:%s:%s:%d:%s:%s",
		v.Instrument, v.Strings, v.Tuning, v.Root, v.Pattern, v.Frets, v.Display, v.Spelling)
}

func (s *FretboardService) cached(ctx context.Context, v *model.FretboardRequest) *model.Fretboard {
	if s.redis == nil || s.cacheTTL <= 0 {
		return nil
	}
	data, err := s.redis.Get(ctx, cacheKey(v)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Fretboard cache read failed: %v", err)
		}
		return nil
	}
	var fb model.Fretboard
	if err := json.Unmarshal(data, &fb); err != nil {
		return nil
	}
	return &fb
}

func (s *FretboardService) store(ctx context.Context, v *model.FretboardRequest, fb *model.Fretboard) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(fb)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(v), data, s.cacheTTL).Err(); err != nil {
		log.Printf("Fretboard cache write failed: %v", err)
	}
}
