package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fretnav/api/internal/model"
	"github.com/fretnav/api/internal/render"
	"github.com/fretnav/api/internal/theory"
	"github.com/fretnav/api/pkg/response"
)

// TheoryHandler serves read-only lookups against the pitch space, pattern
// catalog, tuning catalog and circle of fifths.
type TheoryHandler struct {
	validator *validator.Validate
}

func NewTheoryHandler(v *validator.Validate) *TheoryHandler {
	return &TheoryHandler{validator: v}
}

// Notes handles GET /api/notes
func (h *TheoryHandler) Notes(c *fiber.Ctx) error {
	out := make([]model.NoteEntry, 0, 12)
	for _, pc := range theory.Chromatic() {
		out = append(out, model.NoteEntry{
			Index:     int(pc),
			Canonical: pc.Name(),
			Flat:      pc.Spell(theory.SpellFlat),
			Spellings: pc.Spellings(),
		})
	}
	return response.OK(c, out)
}

// AtFret handles GET /api/notes/at-fret
func (h *TheoryHandler) AtFret(c *fiber.Ctx) error {
	var q model.AtFretQuery
	if err := c.QueryParser(&q); err != nil {
		return response.ValidationError(c, "Invalid query", nil)
	}
	if err := h.validator.Struct(&q); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	pc, err := theory.ClassAtFret(q.Open, q.Fret)
	if err != nil {
		return theoryError(c, err)
	}

	return response.OK(c, model.AtFretResponse{
		Open:  q.Open,
		Fret:  q.Fret,
		Pitch: pc.Spell(theory.Spelling(q.Spelling)),
	})
}

// InPattern handles GET /api/notes/in-pattern
func (h *TheoryHandler) InPattern(c *fiber.Ctx) error {
	var q model.InPatternQuery
	if err := c.QueryParser(&q); err != nil {
		return response.ValidationError(c, "Invalid query", nil)
	}
	if err := h.validator.Struct(&q); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	var intervals []int
	if q.Pattern != "" {
		p, err := theory.LookupPattern(q.Pattern)
		if err != nil {
			return theoryError(c, err)
		}
		intervals = p.Intervals
	} else {
		parsed, err := theory.ParseIntervals(q.Intervals)
		if err != nil {
			return response.ValidationError(c, err.Error(), nil)
		}
		intervals = parsed
	}

	if _, err := theory.IndexOf(q.Note); err != nil {
		return theoryError(c, err)
	}

	in, err := theory.InPattern(q.Note, q.Root, intervals)
	if err != nil {
		return theoryError(c, err)
	}

	resp := model.InPatternResponse{
		Note:      q.Note,
		Root:      q.Root,
		Intervals: intervals,
		InPattern: in,
	}
	if q.Root != "" {
		d, err := theory.Interval(q.Note, q.Root)
		if err != nil {
			return theoryError(c, err)
		}
		resp.Interval = &d
	}

	return response.OK(c, resp)
}

// Degree handles GET /api/notes/degree
func (h *TheoryHandler) Degree(c *fiber.Ctx) error {
	var q model.DegreeQuery
	if err := c.QueryParser(&q); err != nil {
		return response.ValidationError(c, "Invalid query", nil)
	}
	if err := h.validator.Struct(&q); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	d, err := theory.Degree(q.Note, q.Root)
	if err != nil {
		return theoryError(c, err)
	}

	return response.OK(c, model.DegreeResponse{
		Note:   q.Note,
		Root:   q.Root,
		Label:  d.String(),
		Degree: d.Degree,
	})
}

// Patterns handles GET /api/patterns
func (h *TheoryHandler) Patterns(c *fiber.Ctx) error {
	var q model.PatternsQuery
	if err := c.QueryParser(&q); err != nil {
		return response.ValidationError(c, "Invalid query", nil)
	}
	if err := h.validator.Struct(&q); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	return response.OK(c, theory.Patterns(theory.Family(q.Family)))
}

// Pattern handles GET /api/patterns/:id
func (h *TheoryHandler) Pattern(c *fiber.Ctx) error {
	p, err := theory.LookupPattern(c.Params("id"))
	if err != nil {
		return theoryError(c, err)
	}
	return response.OK(c, p)
}

// Tunings handles GET /api/tunings
func (h *TheoryHandler) Tunings(c *fiber.Ctx) error {
	var q model.TuningsQuery
	if err := c.QueryParser(&q); err != nil {
		return response.ValidationError(c, "Invalid query", nil)
	}
	if err := h.validator.Struct(&q); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	list, err := theory.TuningList(theory.Instrument(q.Instrument), q.Strings)
	if err != nil {
		return theoryError(c, err)
	}

	return response.OK(c, model.TuningsResponse{
		Instrument: q.Instrument,
		Strings:    q.Strings,
		Default:    theory.DefaultTuningID,
		Tunings:    list,
	})
}

// Tuning handles GET /api/tunings/:instrument/:strings/:id
func (h *TheoryHandler) Tuning(c *fiber.Ctx) error {
	count, err := c.ParamsInt("strings")
	if err != nil {
		return response.ValidationError(c, "String count must be a number", nil)
	}

	t, err := theory.LookupTuning(theory.Instrument(c.Params("instrument")), count, c.Params("id"))
	if err != nil {
		return theoryError(c, err)
	}
	return response.OK(c, t)
}

// Keys handles GET /api/keys
func (h *TheoryHandler) Keys(c *fiber.Ctx) error {
	keys := theory.Keys()
	if wantsText(c) {
		return response.Text(c, render.Circle(keys))
	}
	return response.OK(c, keys)
}

// Key handles GET /api/keys/:tonic
func (h *TheoryHandler) Key(c *fiber.Ctx) error {
	detail, err := keyDetail(c.Params("tonic"))
	if err != nil {
		return theoryError(c, err)
	}
	if wantsText(c) {
		return response.Text(c, render.Key(detail))
	}
	return response.OK(c, detail)
}

func keyDetail(tonic string) (*model.KeyDetail, error) {
	k, err := theory.LookupKey(tonic)
	if err != nil {
		return nil, err
	}
	sig, err := theory.KeySignature(k.Tonic)
	if err != nil {
		return nil, err
	}
	primary, err := theory.PrimaryTriads(k.Tonic)
	if err != nil {
		return nil, err
	}
	derived, err := theory.DerivedTriads(k.Tonic)
	if err != nil {
		return nil, err
	}
	neighbors, err := theory.KeyNeighbors(k.Tonic)
	if err != nil {
		return nil, err
	}
	return &model.KeyDetail{
		Key:           k,
		Signature:     sig,
		PrimaryTriads: primary,
		DerivedTriads: derived,
		Neighbors:     neighbors,
	}, nil
}
