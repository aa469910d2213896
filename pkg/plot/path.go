package plot

import (
	"math"
	"strings"

	"github.com/matzehuels/stackplot/pkg/surface"
)

type point struct{ x, y float64 }

// segments splits records into runs of consecutive dataset indices, so
// paths break where data was filtered out.
func segments(recs []record) [][]record {
	var out [][]record
	for i, r := range recs {
		if i == 0 || r.index != recs[i-1].index+1 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], r)
	}
	return out
}

func writePoint(b *strings.Builder, cmd byte, p point) {
	b.WriteByte(cmd)
	b.WriteString(surface.FormatValue(p.x))
	b.WriteByte(',')
	b.WriteString(surface.FormatValue(p.y))
}

// linePath draws each run as an open polyline.
func linePath(runs [][]point) string {
	var b strings.Builder
	for _, run := range runs {
		for i, p := range run {
			cmd := byte('L')
			if i == 0 {
				cmd = 'M'
			}
			writePoint(&b, cmd, p)
		}
	}
	return b.String()
}

// areaPath draws each run as a closed band between top and bottom.
func areaPath(tops, bottoms [][]point) string {
	var b strings.Builder
	for k, run := range tops {
		for i, p := range run {
			cmd := byte('L')
			if i == 0 {
				cmd = 'M'
			}
			writePoint(&b, cmd, p)
		}
		bottom := bottoms[k]
		for i := len(bottom) - 1; i >= 0; i-- {
			writePoint(&b, 'L', bottom[i])
		}
		if len(run) > 0 {
			b.WriteByte('Z')
		}
	}
	return b.String()
}

// arcPath draws an annular sector between radii r0 < r1 from angle a0 to
// a1, in radians clockwise from twelve o'clock.
func arcPath(r0, r1, a0, a1 float64) string {
	if a1-a0 >= 2*math.Pi-1e-9 {
		mid := a0 + math.Pi
		return arcPath(r0, r1, a0, mid) + arcPath(r0, r1, mid, a1)
	}
	at := func(r, a float64) point { return point{r * math.Sin(a), -r * math.Cos(a)} }
	large := "0"
	if a1-a0 > math.Pi {
		large = "1"
	}
	var b strings.Builder
	writePoint(&b, 'M', at(r1, a0))
	b.WriteString("A" + surface.FormatValue(r1) + "," + surface.FormatValue(r1) + " 0 " + large + " 1 ")
	end := at(r1, a1)
	b.WriteString(surface.FormatValue(end.x) + "," + surface.FormatValue(end.y))
	if r0 > 0 {
		writePoint(&b, 'L', at(r0, a1))
		b.WriteString("A" + surface.FormatValue(r0) + "," + surface.FormatValue(r0) + " 0 " + large + " 0 ")
		start := at(r0, a0)
		b.WriteString(surface.FormatValue(start.x) + "," + surface.FormatValue(start.y))
	} else {
		b.WriteString("L0,0")
	}
	b.WriteByte('Z')
	return b.String()
}
