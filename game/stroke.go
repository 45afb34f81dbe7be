package game

import (
	"math"

	"kanjibattle/domain/packet"
)

const (
	DefaultTolerance      = 0.15
	resampleCount         = 20
	directionDotThreshold = 0.3
	strokeCorrectAccuracy = 40.0
)

// resamplePolyline redistributes a polyline to n points spaced evenly along
// its arc length, so point count and drawing speed don't affect comparison.
// The first and last points of the input are preserved exactly.
func resamplePolyline(points []packet.Point, n int) []packet.Point {
	if n <= 0 {
		return nil
	}
	out := make([]packet.Point, n)
	if len(points) == 0 {
		return out
	}
	if len(points) == 1 {
		for i := range out {
			out[i] = points[0]
		}
		return out
	}

	segLens := make([]float64, len(points)-1)
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		segLens[i] = math.Hypot(points[i+1].X-points[i].X, points[i+1].Y-points[i].Y)
		total += segLens[i]
	}
	if total == 0 {
		for i := range out {
			out[i] = points[0]
		}
		return out
	}

	out[0] = points[0]
	out[n-1] = points[len(points)-1]

	seg := 0
	walked := 0.0
	for i := 1; i < n-1; i++ {
		target := total * float64(i) / float64(n-1)
		for seg < len(segLens)-1 && walked+segLens[seg] < target {
			walked += segLens[seg]
			seg++
		}
		t := 0.0
		if segLens[seg] > 0 {
			t = (target - walked) / segLens[seg]
		}
		a, b := points[seg], points[seg+1]
		out[i] = packet.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
	}
	return out
}

func strokeDirection(points []packet.Point) (dx, dy float64) {
	if len(points) < 2 {
		return 0, 0
	}
	first, last := points[0], points[len(points)-1]
	dx, dy = last.X-first.X, last.Y-first.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0
	}
	return dx / length, dy / length
}

// MatchStroke grades one freehand stroke against one reference stroke.
// Order violations are not detected: OrderCorrect is always true and strokes
// are graded independently of the order they were submitted in.
func MatchStroke(index int, user, reference []packet.Point, tolerance float64) packet.StrokeResult {
	result := packet.StrokeResult{Index: index, OrderCorrect: true}

	u := resamplePolyline(user, resampleCount)
	r := resamplePolyline(reference, resampleCount)

	sum := 0.0
	for i := 0; i < resampleCount; i++ {
		sum += math.Hypot(u[i].X-r[i].X, u[i].Y-r[i].Y)
	}
	avgDist := sum / resampleCount

	accuracy := (1 - avgDist/tolerance) * 100
	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > 100 {
		accuracy = 100
	}
	result.Accuracy = accuracy

	ux, uy := strokeDirection(user)
	rx, ry := strokeDirection(reference)
	result.DirectionMatch = ux*rx+uy*ry > directionDotThreshold

	result.Correct = accuracy >= strokeCorrectAccuracy && result.DirectionMatch
	return result
}

// MatchStrokes grades each submitted stroke against the reference stroke at
// the same index. Strokes beyond the reference count are ignored.
func MatchStrokes(strokes []packet.Stroke, reference []packet.Stroke, tolerance float64) []packet.StrokeResult {
	n := len(strokes)
	if n > len(reference) {
		n = len(reference)
	}
	results := make([]packet.StrokeResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, MatchStroke(i, strokes[i].Points, reference[i].Points, tolerance))
	}
	return results
}

// CalculateDrawingScore combines per-stroke results into one 0-100 score:
// 60% mean stroke accuracy, 25% completeness, 15% order ratio (always 1,
// see MatchStroke), plus up to 10 bonus points for unused time.
func CalculateDrawingScore(results []packet.StrokeResult, totalStrokes int, drawingTimeMs, timeLimitMs int64) float64 {
	if len(results) == 0 || totalStrokes <= 0 {
		return 0
	}

	accSum := 0.0
	for _, r := range results {
		accSum += r.Accuracy
	}
	meanAccuracy := accSum / float64(len(results))

	completeness := float64(len(results)) / float64(totalStrokes)
	if completeness > 1 {
		completeness = 1
	}

	orderRatio := 1.0

	timeBonus := 0.0
	if timeLimitMs > 0 {
		timeBonus = (1 - float64(drawingTimeMs)/float64(timeLimitMs)) * 10
		if timeBonus < 0 {
			timeBonus = 0
		}
	}

	score := math.Round(meanAccuracy*0.6 + completeness*25 + orderRatio*15 + timeBonus)
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
