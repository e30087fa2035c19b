package olc

// sprint returns the better of the finished and in-progress sprint
// candidates.
func (sc *scanner) sprint() (Solution, bool) {
	if sc.b.len() < MinPointsSprint {
		return Solution{}, false
	}
	done, okDone := sc.sprintFinished()
	if !sc.predict() {
		return done, okDone
	}
	prog, okProg := sc.sprintInProgress()
	switch {
	case okDone && okProg:
		if prog.Score > done.Score {
			return prog, true
		}
		return done, true
	case okProg:
		return prog, true
	}
	return done, okDone
}

// sprintFinished tries every new end point whose flight already covers a full
// window: start is the latest lowest point inside the window and must not be
// higher than the end.
func (sc *scanner) sprintFinished() (Solution, bool) {
	n := sc.b.len()
	first := sc.b.at(0).Time

	best := 0
	var bi [5]int
	for i5 := n - 1; i5 >= MinPointsSprint-1 && sc.b.at(i5).seq > sc.from; i5-- {
		end := sc.b.at(i5)
		if end.Time-first < sc.window {
			continue
		}
		i1 := sc.sprintStart(i5)
		if end.AltLow < sc.b.at(i1).AltLow {
			continue
		}
		for i3 := i1 + 2; i3 < i5-1; i3++ {
			i2 := sc.split(i1, i3)
			i4 := sc.split(i3, i5)
			d := sc.d(i1, i2) + sc.d(i2, i3) + sc.d(i3, i4) + sc.d(i4, i5)
			if d > best {
				best, bi = d, [5]int{i1, i2, i3, i4, i5}
			}
		}
	}
	if best <= 0 {
		return Solution{}, false
	}
	elapsed := sc.b.at(bi[4]).Time - sc.b.at(bi[0]).Time
	return sc.solution(Sprint, bi[:], best, elapsed, true), true
}

// sprintInProgress ends at the latest point and spends the height above the
// start over the rest of the window on a final glide.
func (sc *scanner) sprintInProgress() (Solution, bool) {
	i5 := sc.b.len() - 1
	i1 := sc.start
	if i5-i1 < MinPointsSprint-1 {
		return Solution{}, false
	}
	cur, st := sc.b.at(i5), sc.b.at(i1)
	dh := cur.AltLow - st.AltLow
	dt := sc.window - (cur.Time - st.Time)
	if dh < 0 || dt < 0 {
		return Solution{}, false
	}

	var vopt float64
	if sink := dh / dt; sink >= sc.glide.MinSink() {
		vopt = sc.glide.SpeedForSinkRate(sink)
	} else {
		// Not enough height to use the whole window: glide at best L/D until
		// the height is gone.
		vopt = sc.glide.VBestLD()
		dt = dh / (vopt / sc.glide.BestLD())
	}
	further := int(vopt * dt / DistanceUnit)

	best := 0
	var bi [5]int
	for i4 := i5 - 1; i4 > i1+2; i4-- {
		d0 := sc.d(i4, i5) + further
		for i3 := i1 + 2; i3 < i4; i3++ {
			i2 := sc.split(i1, i3)
			d := sc.d(i1, i2) + sc.d(i2, i3) + sc.d(i3, i4) + d0
			if d > best {
				best, bi = d, [5]int{i1, i2, i3, i4, i5}
			}
		}
	}
	if best <= 0 {
		return Solution{}, false
	}
	elapsed := cur.Time + dt - st.Time
	sol := sc.solution(Sprint, bi[:], best, elapsed, false)
	sol.Projected = sc.project(i5, further)
	return sol, true
}
