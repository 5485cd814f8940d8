package rrtplanner

// EdgePolylines snapshots every edge of the planner graph as a polyline of
// states (source state, intermediate states, destination state), for
// visualisation. The returned states are copies; taking a snapshot never
// blocks or mutates planning state.
func EdgePolylines(p *Planner) [][]State {
	var lines [][]State
	for _, v := range p.Vertices() {
		for _, e := range v.Outgoing {
			line := make([]State, 0, len(e.Trajectory.States)+2)
			line = append(line, e.Src.State.Clone())
			for _, s := range e.Trajectory.States {
				line = append(line, s.Clone())
			}
			line = append(line, e.Dst.State.Clone())
			lines = append(lines, line)
		}
	}
	return lines
}
