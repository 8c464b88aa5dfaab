// Package geometry provides axis-aligned bounding box operations shared by the
// tracking and formatting layers. All boxes are absolute pixel rectangles.
package geometry

import "errors"

// ErrNoBoxes is returned by Union when called with an empty box list.
// Callers are expected to guard against this; a track always carries at least
// one detection, so reaching this error indicates a programming bug upstream.
var ErrNoBoxes = errors.New("geometry: union of zero boxes")

// Box is an axis-aligned rectangle in absolute pixel coordinates.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the box.
func (b Box) Center() (float64, float64) {
	return float64(b.X) + float64(b.Width)/2, float64(b.Y) + float64(b.Height)/2
}

// Union returns the smallest axis-aligned rectangle containing every input box.
func Union(boxes []Box) (Box, error) {
	if len(boxes) == 0 {
		return Box{}, ErrNoBoxes
	}

	xMin, yMin := boxes[0].X, boxes[0].Y
	xMax, yMax := boxes[0].X+boxes[0].Width, boxes[0].Y+boxes[0].Height

	for _, b := range boxes[1:] {
		xMin = min(xMin, b.X)
		yMin = min(yMin, b.Y)
		xMax = max(xMax, b.X+b.Width)
		yMax = max(yMax, b.Y+b.Height)
	}

	return Box{
		X:      xMin,
		Y:      yMin,
		Width:  xMax - xMin,
		Height: yMax - yMin,
	}, nil
}
