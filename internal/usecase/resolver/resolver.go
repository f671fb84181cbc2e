package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

type Config struct {
	ConfidenceFloor     float64
	SimilarityThreshold float64

	MinRegionArea int
	MaxRegionArea int
	MinAspect     float64
	MaxAspect     float64
	EdgeThreshold uint8

	IconMinDY int
	IconMaxDY int
	IconMaxDX int

	VisualConfidence float64
	RegionConfidence float64
}

func DefaultConfig() Config {
	return Config{
		ConfidenceFloor:     0.3,
		SimilarityThreshold: 0.5,
		MinRegionArea:       400,
		MaxRegionArea:       100000,
		MinAspect:           0.2,
		MaxAspect:           10.0,
		EdgeThreshold:       48,
		IconMinDY:           10,
		IconMaxDY:           180,
		IconMaxDX:           60,
		VisualConfidence:    0.4,
		RegionConfidence:    0.5,
	}
}

type strategy struct {
	name string
	find func(ctx context.Context, q *query) []entity.FoundElement
}

type Resolver struct {
	ocr        output.OCRPort
	cfg        Config
	logger     output.LoggerPort
	strategies []strategy
}

func New(ocr output.OCRPort, cfg Config, logger output.LoggerPort) *Resolver {
	r := &Resolver{
		ocr:    ocr,
		cfg:    cfg,
		logger: logger,
	}
	r.strategies = []strategy{
		{name: "search_results", find: r.findSearchResults},
		{name: "text_match", find: r.findTextMatches},
		{name: "similarity", find: r.findSimilar},
		{name: "visual", find: r.findVisual},
		{name: "named_region", find: r.findRegion},
	}
	return r
}

type query struct {
	description string
	normalized  string
	shot        *entity.Screenshot
	exclude     []string

	extracted bool
	entries   []entity.TextRegion
	ocrErr    error
}

var literalPointRe = regexp.MustCompile(`^\s*\(?\s*(-?\d+)\s*[,\s]\s*(-?\d+)\s*\)?\s*$`)

// Resolve turns a target description into candidates, best first. A literal
// "(x, y)" description resolves to itself. Otherwise the strategies run in
// order and the first one producing a non-empty, filtered result wins.
// Candidates never include excluded texts or points inside a masked band.
func (r *Resolver) Resolve(ctx context.Context, description string, shot *entity.Screenshot, exclude []string) ([]entity.FoundElement, error) {
	if p, ok := literalPoint(description); ok {
		return []entity.FoundElement{{
			Text:        strings.TrimSpace(description),
			Confidence:  1.0,
			Coordinates: p,
			BoundingBox: entity.Rect{X: p.X, Y: p.Y, W: 1, H: 1},
			Kind:        entity.ElementCoordinate,
		}}, nil
	}

	q := &query{
		description: description,
		normalized:  matchKey(description),
		shot:        shot,
		exclude:     exclude,
	}

	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found := r.filter(q, s.find(ctx, q))
		if len(found) == 0 {
			continue
		}
		r.log("Target resolved", "description", description, "strategy", s.name,
			"candidates", len(found), "text", found[0].Text,
			"x", found[0].Coordinates.X, "y", found[0].Coordinates.Y)
		return found, nil
	}

	r.log("Target not found", "description", description, "ocrError", q.ocrErr)
	if q.ocrErr != nil {
		return nil, fmt.Errorf("%w: %q: %w", entity.ErrTargetNotFound, description, q.ocrErr)
	}
	return nil, fmt.Errorf("%w: %q", entity.ErrTargetNotFound, description)
}

func literalPoint(description string) (entity.Point, bool) {
	m := literalPointRe.FindStringSubmatch(description)
	if m == nil {
		return entity.Point{}, false
	}
	x, errX := strconv.Atoi(m[1])
	y, errY := strconv.Atoi(m[2])
	if errX != nil || errY != nil {
		return entity.Point{}, false
	}
	return entity.Point{X: x, Y: y}, true
}

// text runs extraction once per query, dropping low-confidence entries and
// entries whose center falls inside a masked band.
func (r *Resolver) text(ctx context.Context, q *query) []entity.TextRegion {
	if q.extracted {
		return q.entries
	}
	q.extracted = true

	if r.ocr == nil || q.shot == nil || q.shot.Image == nil {
		return nil
	}
	regions, err := r.ocr.Recognize(ctx, q.shot.Image)
	if err != nil {
		q.ocrErr = err
		var initErr *entity.OCRInitError
		if errors.As(err, &initErr) {
			r.warn("OCR engine unavailable, using visual fallbacks only", "error", err)
		} else {
			r.warn("Text extraction failed", "error", err)
		}
		return nil
	}

	for _, reg := range regions {
		if reg.Confidence < r.cfg.ConfidenceFloor || strings.TrimSpace(reg.Text) == "" {
			continue
		}
		if q.shot.InMaskedBand(reg.Box.Center()) {
			continue
		}
		q.entries = append(q.entries, reg)
	}
	return q.entries
}

func (r *Resolver) findSearchResults(ctx context.Context, q *query) []entity.FoundElement {
	idx, ok := searchResultIndex(q.description)
	if !ok {
		return nil
	}

	var results []entity.FoundElement
	for _, e := range r.text(ctx, q) {
		if isSearchResult(e.Text) && !excluded(e.Text, q.exclude) {
			results = append(results, element(e, entity.ElementSearchResult))
		}
	}
	sortReadingOrder(results)

	if len(results) == 0 {
		return nil
	}
	if idx < 0 {
		idx = len(results) - 1
	}
	if idx >= len(results) {
		return nil
	}
	return results[idx:]
}

func (r *Resolver) findTextMatches(ctx context.Context, q *query) []entity.FoundElement {
	if q.normalized == "" {
		return nil
	}
	exact := useExactMode(q.description) || normalize(q.description) == ""

	type scored struct {
		el      entity.FoundElement
		quality int
	}
	var matches []scored
	for _, e := range r.text(ctx, q) {
		if excluded(e.Text, q.exclude) {
			continue
		}
		norm := matchKey(e.Text)
		switch {
		case norm == q.normalized:
			matches = append(matches, scored{element(e, classify(e.Text)), 2})
		case !exact && fuzzyMatch(q.normalized, norm):
			matches = append(matches, scored{element(e, classify(e.Text)), 1})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].quality != matches[j].quality {
			return matches[i].quality > matches[j].quality
		}
		return ranksBefore(matches[i].el, matches[j].el)
	})

	out := make([]entity.FoundElement, len(matches))
	for i, m := range matches {
		out[i] = m.el
	}

	if q.shot == nil || q.shot.Image == nil {
		return out
	}
	if icon, ok := iconAbove(q.shot.Image, out[0].BoundingBox, r.cfg); ok && !q.shot.InMaskedBand(icon.Center()) {
		r.log("Preferring icon above caption", "text", out[0].Text, "iconX", icon.Center().X, "iconY", icon.Center().Y)
		out[0].Coordinates = icon.Center()
		out[0].Kind = entity.ElementVisual
	}
	return out
}

func (r *Resolver) findSimilar(ctx context.Context, q *query) []entity.FoundElement {
	var (
		best      entity.FoundElement
		bestScore float64
		found     bool
	)
	for _, e := range r.text(ctx, q) {
		if excluded(e.Text, q.exclude) {
			continue
		}
		sim := Similarity(q.description, e.Text)
		if sim < r.cfg.SimilarityThreshold {
			continue
		}
		score := sim * (0.7 + 0.3*e.Confidence)
		if !found || score > bestScore {
			best = element(e, classify(e.Text))
			best.Confidence = score
			bestScore = score
			found = true
		}
	}
	if !found {
		return nil
	}
	return []entity.FoundElement{best}
}

var graphicalHint = regexp.MustCompile(`(?i)\b(icon|image|logo|picture|symbol|checkbox|avatar|thumbnail|arrow|graphic|button)s?\b`)

func (r *Resolver) findVisual(_ context.Context, q *query) []entity.FoundElement {
	if q.shot == nil || q.shot.Image == nil || !graphicalHint.MatchString(q.description) {
		return nil
	}
	var out []entity.FoundElement
	for _, box := range detectRegions(q.shot.Image, r.cfg) {
		out = append(out, entity.FoundElement{
			Confidence:  r.cfg.VisualConfidence,
			Coordinates: box.Center(),
			BoundingBox: box,
			Kind:        entity.ElementVisual,
		})
	}
	return out
}

func (r *Resolver) findRegion(_ context.Context, q *query) []entity.FoundElement {
	if q.shot == nil || q.shot.Image == nil {
		return nil
	}
	name, p, ok := lookupRegion(q.description, q.shot.Width(), q.shot.Height())
	if !ok {
		return nil
	}
	return []entity.FoundElement{{
		Text:        name,
		Confidence:  r.cfg.RegionConfidence,
		Coordinates: p,
		BoundingBox: entity.Rect{X: p.X, Y: p.Y, W: 1, H: 1},
		Kind:        entity.ElementRegion,
	}}
}

// filter enforces the exclusion and masking guarantees on every strategy.
func (r *Resolver) filter(q *query, found []entity.FoundElement) []entity.FoundElement {
	out := found[:0:0]
	for _, el := range found {
		if el.Text != "" && excluded(el.Text, q.exclude) {
			continue
		}
		if q.shot.InMaskedBand(el.Coordinates) {
			continue
		}
		out = append(out, el)
	}
	return out
}

func element(e entity.TextRegion, kind entity.ElementKind) entity.FoundElement {
	return entity.FoundElement{
		Text:        e.Text,
		Confidence:  e.Confidence,
		Coordinates: e.Box.Center(),
		BoundingBox: e.Box,
		Kind:        kind,
	}
}

func excluded(text string, exclude []string) bool {
	if len(exclude) == 0 {
		return false
	}
	norm := normalize(text)
	for _, e := range exclude {
		if text == e || (norm != "" && norm == normalize(e)) {
			return true
		}
	}
	return false
}

// ranksBefore orders by confidence, then top-to-bottom, left-to-right.
func ranksBefore(a, b entity.FoundElement) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.BoundingBox.Y != b.BoundingBox.Y {
		return a.BoundingBox.Y < b.BoundingBox.Y
	}
	return a.BoundingBox.X < b.BoundingBox.X
}

func sortReadingOrder(els []entity.FoundElement) {
	sort.SliceStable(els, func(i, j int) bool {
		if els[i].BoundingBox.Y != els[j].BoundingBox.Y {
			return els[i].BoundingBox.Y < els[j].BoundingBox.Y
		}
		return els[i].BoundingBox.X < els[j].BoundingBox.X
	})
}

func (r *Resolver) log(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Resolver) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
