package olc

// Leg weights of the classic scheme in fifths: four full legs, then 0.8 and 0.6.
var classicWeights = [6]int{5, 5, 5, 5, 4, 3}

// classic keeps the start fixed at the detected start point, takes the last
// leg from the best-end memo and searches the two middle splits. Only second
// last points whose best end changed since the previous classic pass are
// re-examined.
func (sc *scanner) classic() (Solution, bool) {
	n := sc.b.len()
	i1 := sc.start
	if n-i1 < MinPointsClassic {
		return Solution{}, false
	}

	best, furtherBest := 0, 0
	var bi [7]int
	finished := false

	for i6 := i1 + 5; i6 < n; i6++ {
		i7, changed := sc.bestEnd(i1, i6)
		if i7 <= i6 || changed <= sc.from {
			continue
		}

		further := 0
		if i7 == n-1 && sc.predict() {
			further = sc.glideUnits(sc.b.at(i7).AltLow - sc.b.at(i1).AltLow)
		}
		last := classicWeights[5] * sc.d(i6, i7)

		for i3 := i1 + 2; i3 < i6-1; i3++ {
			i2 := sc.split(i1, i3)
			head := classicWeights[0]*sc.d(i1, i2) + classicWeights[1]*sc.d(i2, i3)
			for i5 := i3 + 2; i5 <= i6; i5++ {
				i4 := sc.split(i3, i5)
				sum := head +
					classicWeights[2]*sc.d(i3, i4) +
					classicWeights[3]*sc.d(i4, i5) +
					classicWeights[4]*sc.d(i5, i6) + last
				d := sum/5 + further
				if d > best {
					best, furtherBest = d, further
					bi = [7]int{i1, i2, i3, i4, i5, i6, i7}
					finished = further == 0
				}
			}
		}
	}
	if best <= 0 {
		return Solution{}, false
	}

	elapsed := sc.b.at(bi[6]).Time - sc.b.at(bi[0]).Time
	sol := sc.solution(Classic, bi[:], best, elapsed, finished)
	if !finished {
		sol.Time += float64(furtherBest) * DistanceUnit / sc.glide.VBestLD()
		sol.Projected = sc.project(bi[6], furtherBest)
	}
	return sol, true
}
