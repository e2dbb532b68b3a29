package reasoning

import (
	"log/slog"
	"time"
)

// SubTaskStatus is the lifecycle state of a SubTask within a TaskGraph. The
// tiered executor is the only component that mutates it, one task at a time.
type SubTaskStatus string

const (
	StatusPending   SubTaskStatus = "pending"
	StatusQueued    SubTaskStatus = "queued"
	StatusRunning   SubTaskStatus = "running"
	StatusCompleted SubTaskStatus = "completed"
	StatusFailed    SubTaskStatus = "failed"
	StatusSkipped   SubTaskStatus = "skipped"
	StatusCancelled SubTaskStatus = "cancelled"
)

// SubTask is one node of a TaskGraph, assigned to a single domain specialist.
type SubTask struct {
	ID            string
	Title         string
	Description   string
	Domain        string
	Dependencies  []string
	Status        SubTaskStatus
	RelevantFiles []string
	Priority      int
	Complexity    int
}

// TaskGraph is the decomposer's output: a goal broken into SubTasks with a
// forward adjacency (edges[id] = ids that depend on id) derived from each
// task's Dependencies. It is created once by the decomposer and owned by the
// tiered executor thereafter, which only ever updates Status in place.
type TaskGraph struct {
	Goal            string
	Tasks           []SubTask
	Edges           map[string][]string
	CreatedAt       time.Time
	TotalComplexity int
}

// TaskByID returns a pointer into g.Tasks for in-place status mutation, or nil.
func (g *TaskGraph) TaskByID(id string) *SubTask {
	for i := range g.Tasks {
		if g.Tasks[i].ID == id {
			return &g.Tasks[i]
		}
	}
	return nil
}

// fallbackGraph is returned whenever the decomposer's model call or parse
// fails entirely: a safe, always-processable three-node sequence.
func fallbackGraph(goal string) *TaskGraph {
	tasks := []SubTask{
		{ID: "plan", Title: "Plan", Description: "Plan the approach to: " + goal, Domain: "planner", Priority: 50, Complexity: 2, Status: StatusPending},
		{ID: "implement", Title: "Implement", Description: "Implement: " + goal, Domain: "coder", Dependencies: []string{"plan"}, Priority: 50, Complexity: 3, Status: StatusPending},
		{ID: "review", Title: "Review", Description: "Review the implementation of: " + goal, Domain: "reviewer", Dependencies: []string{"implement"}, Priority: 50, Complexity: 2, Status: StatusPending},
	}
	return BuildGraph(goal, tasks)
}

// BuildGraph assembles a TaskGraph from validated tasks: it drops dangling
// dependency references, breaks any cycle via Kahn's algorithm, and builds
// the forward adjacency from what remains.
func BuildGraph(goal string, tasks []SubTask) *TaskGraph {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}

	for i := range tasks {
		var kept []string
		for _, dep := range tasks[i].Dependencies {
			if dep == tasks[i].ID {
				slog.Warn("task depends on itself, dropping", "task", tasks[i].ID)
				continue
			}
			if !ids[dep] {
				slog.Warn("task dependency references unknown id, dropping", "task", tasks[i].ID, "dependency", dep)
				continue
			}
			kept = append(kept, dep)
		}
		tasks[i].Dependencies = kept
		if tasks[i].Status == "" {
			tasks[i].Status = StatusPending
		}
	}

	breakCycles(tasks)

	edges := make(map[string][]string, len(tasks))
	total := 0
	for _, t := range tasks {
		total += t.Complexity
		for _, dep := range t.Dependencies {
			edges[dep] = append(edges[dep], t.ID)
		}
	}

	return &TaskGraph{
		Goal:            goal,
		Tasks:           tasks,
		Edges:           edges,
		CreatedAt:       time.Now(),
		TotalComplexity: total,
	}
}

// breakCycles detects a cycle by DFS; if found, runs Kahn's algorithm and
// clears the Dependencies of every task Kahn's algorithm could not process
// (the back-edges forming the cycle), making them immediately runnable.
func breakCycles(tasks []SubTask) {
	if !hasCycle(tasks) {
		return
	}
	slog.Warn("task graph has a cycle, breaking it via Kahn's algorithm")

	byID := make(map[string]*SubTask, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	inDegree := make(map[string]int, len(tasks))
	for _, t := range tasks {
		inDegree[t.ID] = len(t.Dependencies)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	processed := make(map[string]bool, len(tasks))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed[id] = true

		for _, t := range tasks {
			for _, dep := range t.Dependencies {
				if dep == id {
					inDegree[t.ID]--
					if inDegree[t.ID] == 0 && !processed[t.ID] {
						queue = append(queue, t.ID)
					}
				}
			}
		}
	}

	for i := range tasks {
		if !processed[tasks[i].ID] {
			slog.Warn("clearing dependencies of unprocessable task to break cycle", "task", tasks[i].ID)
			tasks[i].Dependencies = nil
		}
	}
}

// hasCycle runs a 3-color DFS over the dependency relation.
func hasCycle(tasks []SubTask) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	byID := make(map[string]*SubTask, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	color := make(map[string]int, len(tasks))

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		task := byID[id]
		if task != nil {
			for _, dep := range task.Dependencies {
				switch color[dep] {
				case gray:
					return true
				case white:
					if visit(dep) {
						return true
					}
				}
			}
		}
		color[id] = black
		return false
	}

	for _, t := range tasks {
		if color[t.ID] == white {
			if visit(t.ID) {
				return true
			}
		}
	}
	return false
}

// Tiers groups tasks into execution tiers: tier 0 has no dependencies, tier N
// depends only on tasks in tiers < N. Assumes the graph is acyclic (true of
// any TaskGraph returned by BuildGraph).
func (g *TaskGraph) Tiers() [][]SubTask {
	tier := make(map[string]int, len(g.Tasks))
	byID := make(map[string]*SubTask, len(g.Tasks))
	for i := range g.Tasks {
		byID[g.Tasks[i].ID] = &g.Tasks[i]
	}

	var tierOf func(id string) int
	tierOf = func(id string) int {
		if t, ok := tier[id]; ok {
			return t
		}
		task := byID[id]
		if task == nil || len(task.Dependencies) == 0 {
			tier[id] = 0
			return 0
		}
		max := -1
		for _, dep := range task.Dependencies {
			if d := tierOf(dep); d > max {
				max = d
			}
		}
		tier[id] = max + 1
		return max + 1
	}

	maxTier := 0
	for _, t := range g.Tasks {
		if n := tierOf(t.ID); n > maxTier {
			maxTier = n
		}
	}

	tiers := make([][]SubTask, maxTier+1)
	for _, t := range g.Tasks {
		n := tier[t.ID]
		tiers[n] = append(tiers[n], t)
	}
	return tiers
}
