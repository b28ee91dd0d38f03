package poschan

// Position is a 3-D point in metres.
type Position struct {
	X, Y, Z float64
}

// interpolate implements spec section 4.5's Interpolate(device, t): the
// t >= nextTime check is evaluated first so that lastTime == nextTime
// (a move with duration 0) resolves to the endpoint rather than dividing
// by zero.
func interpolate(last, next Position, lastTime, nextTime, t uint64) Position {
	if t >= nextTime {
		return next
	}
	if t <= lastTime {
		return last
	}
	frac := float64(t-lastTime) / float64(nextTime-lastTime)
	return Position{
		X: last.X + frac*(next.X-last.X),
		Y: last.Y + frac*(next.Y-last.Y),
		Z: last.Z + frac*(next.Z-last.Z),
	}
}

// PositionAt returns device d's interpolated position at time t, using and
// refreshing that device's memoised cache (spec section 4.5's Cache).
func (s *Stream) PositionAt(d int, t uint64) Position {
	dev := &s.devices[d]
	if dev.cacheValid && dev.cacheTime == t {
		return dev.cachePos
	}
	pos := interpolate(dev.lastPos, dev.nextPos, dev.lastTime, dev.nextTime, t)
	dev.cacheValid = true
	dev.cacheTime = t
	dev.cachePos = pos
	return pos
}
