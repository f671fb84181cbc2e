package entity

type ElementKind string

const (
	ElementText         ElementKind = "text"
	ElementButton       ElementKind = "button"
	ElementLink         ElementKind = "link"
	ElementSearchResult ElementKind = "search_result"
	ElementVisual       ElementKind = "visual_element"
	ElementRegion       ElementKind = "region"
	ElementCoordinate   ElementKind = "coordinate"
)

type Point struct {
	X int
	Y int
}

type Rect struct {
	X int
	Y int
	W int
	H int
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

func (r Rect) Area() int {
	return r.W * r.H
}

func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// TextRegion is one entry produced by text extraction over a screen image.
type TextRegion struct {
	Text       string
	Confidence float64
	Box        Rect
}

// FoundElement is a resolution candidate. It lives for a single resolve call.
type FoundElement struct {
	Text        string
	Confidence  float64
	Coordinates Point
	BoundingBox Rect
	Kind        ElementKind
}
