package olc

// triangleLegal checks the closed triangle start s, turnpoints t1 and t2,
// finish f. It returns the scored distance (perimeter minus the start/finish
// gap) in matrix units, and whether the shape is legal.
func (sc *scanner) triangleLegal(s, t1, t2, f int) (int, bool) {
	c := sc.d(t2, s)
	gap := sc.d(s, f)
	if float64(gap) > sc.settings.CloseFraction*float64(c) {
		return 0, false
	}
	a := sc.d(s, t1)
	b := sc.d(t1, t2)
	perimeter := a + b + c
	if perimeter <= 0 {
		return 0, false
	}

	minLeg := min(a, b, c)
	maxLeg := max(a, b, c)
	if float64(perimeter)*DistanceUnit < sc.settings.LargeTriangleThreshold {
		if float64(minLeg) < sc.settings.MinLegFraction*float64(perimeter) {
			return 0, false
		}
	} else if 4*minLeg < perimeter || 20*maxLeg > 9*perimeter {
		return 0, false
	}
	return perimeter - gap, true
}

// triangle scans finish points appended since the last triangle pass, and
// while flying a provisional candidate that glides from the latest point
// back to the start. The provisional distance is the closed triangle less
// the remaining glide. It needs the glide within reach and the start to
// second turnpoint leg more than five times the glide home.
func (sc *scanner) triangle() (Solution, bool) {
	n := sc.b.len()
	if n < MinPointsTriangle {
		return Solution{}, false
	}

	allowance := sc.settings.HeightAllowance
	best := 0
	var bi [4]int
	finished := false
	var ttogo float64

	for i5 := n - 1; i5 >= MinPointsTriangle-1 && sc.b.at(i5).seq > sc.from; i5-- {
		fin := sc.b.at(i5)
		for i2 := 0; i2 < i5-2; i2++ {
			if fin.AltHigh+allowance-sc.b.at(i2).AltLow < 0 {
				continue
			}
			for i4 := i2 + 2; i4 < i5; i4++ {
				i3 := sc.split(i2, i4)
				if d, ok := sc.triangleLegal(i2, i3, i4, i5); ok && d > best {
					best, bi = d, [4]int{i2, i3, i4, i5}
					finished = float64(sc.d(i2, i5))*DistanceUnit <= sc.settings.FinishRadius
					ttogo = 0
				}
			}
		}
	}

	if sc.predict() {
		last := n - 1
		cur := sc.b.at(last)
		for i2 := 0; i2 < last-2; i2++ {
			dtogo := sc.d(i2, last)
			if sc.glideUnits(cur.AltHigh+allowance-sc.b.at(i2).AltLow) <= dtogo {
				continue
			}
			for i4 := i2 + 2; i4 < last; i4++ {
				i3 := sc.split(i2, i4)
				d, ok := sc.triangleLegal(i2, i3, i4, i2)
				if !ok {
					continue
				}
				if 5*dtogo >= sc.d(i2, i4) {
					continue
				}
				// a tie with an open triangle ending here gains the glide home
				if d -= dtogo; d > best || (d == best && !finished) {
					best, bi = d, [4]int{i2, i3, i4, last}
					finished = false
					ttogo = float64(dtogo) * DistanceUnit / sc.glide.VBestLD()
				}
			}
		}
	}

	if best <= 0 {
		return Solution{}, false
	}

	elapsed := sc.b.at(bi[3]).Time - sc.b.at(bi[0]).Time
	sol := sc.solution(Triangle, bi[:], best, elapsed, finished)
	if !finished && ttogo > 0 {
		sol.Time += ttogo
		sol.Projected = sc.b.at(bi[0]).Loc
	}
	return sol, true
}
