// Command rrtserver serves RRT* motion planning over HTTP: POST /plan runs
// a time-budgeted planning query, GET /graph exposes the last planner graph
// for visualisation, GET /health reports server status.
package main

import (
	"encoding/json"
	"flag"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"rrtplanner"
)

var (
	addr         = flag.String("addr", ":8080", "listen address")
	obstacleDir  = flag.String("obstacles", "", "directory of GeoJSON obstacle files")
	margin       = flag.Float64("margin", 5.0, "sampling margin around the start-goal bounding box")
	planningTime = flag.Duration("planning-time", 5*time.Second, "default planning time budget")
)

var logger golog.Logger

var (
	mu          sync.RWMutex
	obstacles   []orb.Polygon
	lastPlanner *rrtplanner.RRTStar
)

// PlanRequest is a single planning query. Start and Goal must share a
// dimension of at least two; the first two components are x and y.
type PlanRequest struct {
	Start []float64 `json:"start"`
	Goal  []float64 `json:"goal"`

	// GoalSize is the half-extent of the goal region per dimension.
	// Defaults to 0.5 in every dimension.
	GoalSize []float64 `json:"goalSize,omitempty"`

	// TimeBudgetMs bounds planning wall-clock time. Defaults to the
	// -planning-time flag.
	TimeBudgetMs int `json:"timeBudgetMs,omitempty"`

	// MaxIterations additionally bounds the iteration count when positive.
	MaxIterations int `json:"maxIterations,omitempty"`

	// Seed makes a query reproducible. Zero seeds from the clock.
	Seed int64 `json:"seed,omitempty"`

	// SimplifyEpsilon, when positive, Douglas-Peucker-simplifies the
	// returned path with this tolerance.
	SimplifyEpsilon float64 `json:"simplifyEpsilon,omitempty"`
}

type PlanResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Path       [][]float64 `json:"path,omitempty"`
	Cost       float64     `json:"cost,omitempty"`
	Iterations int         `json:"iterations"`
	Vertices   int         `json:"vertices"`
}

// corsMiddleware adds CORS headers to allow frontend requests.
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorw("write response", "error", err)
	}
}

func planHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Start) < 2 || len(req.Start) != len(req.Goal) {
		http.Error(w, "start and goal must share a dimension of at least 2", http.StatusBadRequest)
		return
	}

	logger.Infow("plan request", "start", req.Start, "goal", req.Goal)

	resp, err := runQuery(req)
	if err != nil {
		writeJSON(w, http.StatusOK, PlanResponse{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func runQuery(req PlanRequest) (PlanResponse, error) {
	dim := len(req.Start)

	// Sample from the start-goal bounding box plus margin.
	center := make([]float64, dim)
	size := make([]float64, dim)
	for i := range center {
		center[i] = (req.Start[i] + req.Goal[i]) / 2
		size[i] = math.Abs(req.Start[i]-req.Goal[i])/2 + *margin
	}
	support := rrtplanner.NewRegion(center, size)

	goalSize := req.GoalSize
	if len(goalSize) == 0 {
		goalSize = make([]float64, dim)
		for i := range goalSize {
			goalSize[i] = 0.5
		}
	}
	goal := rrtplanner.NewRegion(req.Goal, goalSize)

	extent := 0.0
	for i := range size {
		extent = math.Max(extent, 2*size[i])
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sampler := rrtplanner.NewUniformSampler(support, seed)
	if err := sampler.SetGoalBias(0.05, goal); err != nil {
		return PlanResponse{}, err
	}

	extender, err := rrtplanner.NewStraightLineExtender(extent/10, extent/50)
	if err != nil {
		return PlanResponse{}, err
	}

	mu.RLock()
	obs := obstacles
	mu.RUnlock()

	checker := rrtplanner.NewPolygonCollisionChecker(rrtplanner.MergeObstacles(obs))
	if !checker.CheckState(rrtplanner.State(req.Start)) {
		return PlanResponse{}, errors.New("start state is in collision")
	}

	mtr := rrtplanner.NewMinimumTimeReachability(goal)
	mtr.SetLogger(logger)

	opts := rrtplanner.Options{
		Phase:     rrtplanner.PhaseRewire,
		Gamma:     extent,
		Dimension: dim,
		MaxRadius: 10,
	}
	planner, err := rrtplanner.NewRRTStar(
		sampler,
		rrtplanner.NewRTreeDistanceEvaluator(dim),
		extender,
		checker,
		mtr,
		mtr,
		opts,
	)
	if err != nil {
		return PlanResponse{}, err
	}
	planner.SetLogger(logger)

	if err := planner.Initialize(rrtplanner.State(req.Start)); err != nil {
		return PlanResponse{}, err
	}

	budget := *planningTime
	if req.TimeBudgetMs > 0 {
		budget = time.Duration(req.TimeBudgetMs) * time.Millisecond
	}
	deadline := time.Now().Add(budget)

	iterations := 0
	for time.Now().Before(deadline) {
		if req.MaxIterations > 0 && iterations >= req.MaxIterations {
			break
		}
		if _, err := planner.Iteration(); err != nil {
			return PlanResponse{}, err
		}
		iterations++
	}
	logger.Infow("planning finished", "iterations", iterations, "vertices", planner.NumVertices())

	mu.Lock()
	lastPlanner = planner
	mu.Unlock()

	resp := PlanResponse{
		Iterations: iterations,
		Vertices:   planner.NumVertices(),
	}

	traj, err := mtr.Solution()
	if err != nil {
		if errors.Is(err, rrtplanner.ErrNoSolution) {
			resp.Message = "no path found within the planning budget"
			return resp, nil
		}
		return PlanResponse{}, err
	}

	if req.SimplifyEpsilon > 0 {
		traj = rrtplanner.SimplifyTrajectory(traj, req.SimplifyEpsilon)
	}

	resp.Success = true
	resp.Cost, _ = mtr.BestCost()
	resp.Path = make([][]float64, 0, len(traj.States))
	for _, s := range traj.States {
		resp.Path = append(resp.Path, s)
	}
	return resp, nil
}

// GET /graph - last planner graph as polylines for visualisation.
func graphHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mu.RLock()
	planner := lastPlanner
	mu.RUnlock()

	if planner == nil {
		http.Error(w, "no plan has run yet", http.StatusBadRequest)
		return
	}

	lines := rrtplanner.EdgePolylines(&planner.Planner)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"lines":    lines,
		"numLines": len(lines),
	})
}

// GET /health - health check endpoint.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	mu.RLock()
	hasGraph := lastPlanner != nil
	numObstacles := len(obstacles)
	mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ready",
		"hasGraph":     hasGraph,
		"numObstacles": numObstacles,
	})
}

func main() {
	flag.Parse()
	logger = golog.NewDevelopmentLogger("rrtserver")

	if *obstacleDir != "" {
		polys, err := rrtplanner.LoadObstaclesDir(*obstacleDir)
		if err != nil {
			logger.Fatalw("load obstacles", "error", err)
		}
		obstacles = polys
		logger.Infow("obstacles loaded", "count", len(polys), "dir", *obstacleDir)
	}

	http.HandleFunc("/plan", corsMiddleware(planHandler))
	http.HandleFunc("/graph", corsMiddleware(graphHandler))
	http.HandleFunc("/health", corsMiddleware(healthHandler))

	logger.Infow("server starting", "addr", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Fatal(err)
	}
}
