package resolver

import (
	"strings"

	"desktop-agent/internal/domain/entity"
)

type namedRegion struct {
	names []string
	at    func(w, h int) entity.Point
}

// Longer names come first so "bottom left" wins over "left".
var namedRegions = []namedRegion{
	{[]string{"start button", "start menu"}, func(w, h int) entity.Point { return entity.Point{X: 50, Y: h - 50} }},
	{[]string{"top left", "upper left"}, func(w, h int) entity.Point { return entity.Point{X: 50, Y: 50} }},
	{[]string{"top right", "upper right"}, func(w, h int) entity.Point { return entity.Point{X: w - 50, Y: 50} }},
	{[]string{"bottom left", "lower left"}, func(w, h int) entity.Point { return entity.Point{X: 50, Y: h - 50} }},
	{[]string{"bottom right", "lower right"}, func(w, h int) entity.Point { return entity.Point{X: w - 50, Y: h - 50} }},
	{[]string{"taskbar"}, func(w, h int) entity.Point { return entity.Point{X: w / 2, Y: h - 25} }},
	{[]string{"center", "centre", "middle"}, func(w, h int) entity.Point { return entity.Point{X: w / 2, Y: h / 2} }},
}

func lookupRegion(description string, w, h int) (string, entity.Point, bool) {
	norm := normalize(description)
	for _, r := range namedRegions {
		for _, name := range r.names {
			if containsWord(norm, name) || strings.HasPrefix(norm, name+" ") || norm == name {
				return name, r.at(w, h), true
			}
		}
	}
	return "", entity.Point{}, false
}
