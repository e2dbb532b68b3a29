package agentcatalog

// builtinSpecs returns the fixed-order set of built-in domain specialists.
// Order matters: it is the tie-break for GetByDomain when more than one spec
// shares a domain, and Reset restores exactly this set in exactly this order.
func builtinSpecs() []AgentSpec {
	return []AgentSpec{
		{
			ID: "planner", DisplayName: "Planner", Domain: "planner",
			Instructions:  "Break the goal into a concrete, ordered plan. Do not write code yourself; describe what needs to happen and in what order.",
			MaxIterations: 3, Priority: 80,
		},
		{
			ID: "coder", DisplayName: "Coder", Domain: "coder",
			Instructions:      "Implement the assigned task. Write and modify code directly using the available tools.",
			MaxIterations:     8, RequiresWorkspace: true, Priority: 70,
		},
		{
			ID: "reviewer", DisplayName: "Reviewer", Domain: "reviewer",
			Instructions:  "Review the work of other specialists for correctness, style, and missed edge cases. Report findings; do not rewrite code wholesale.",
			MaxIterations: 4, RequiresWorkspace: true, Priority: 60,
		},
		{
			ID: "security", DisplayName: "Security Auditor", Domain: "security",
			Instructions:  "Audit the assigned area for security issues: injection, auth, secrets handling, unsafe deserialization. Report concrete findings with file and line references.",
			MaxIterations: 5, RequiresWorkspace: true, Priority: 65,
		},
		{
			ID: "testing", DisplayName: "Test Engineer", Domain: "testing",
			Instructions:  "Write or extend automated tests for the assigned task's functionality. Favor realistic coverage over exhaustive permutation grids.",
			MaxIterations: 6, RequiresWorkspace: true, Priority: 55,
		},
		{
			ID: "docs", DisplayName: "Documentation Writer", Domain: "docs",
			Instructions:  "Write or update documentation describing the assigned change. Keep it accurate to the actual implementation.",
			MaxIterations: 3, RequiresWorkspace: true, Priority: 30,
		},
		{
			ID: "perf", DisplayName: "Performance Engineer", Domain: "perf",
			Instructions:  "Identify and address performance bottlenecks in the assigned area. Back any claim with a concrete measurement or reasoning, not guesswork.",
			MaxIterations: 6, RequiresWorkspace: true, Priority: 55,
		},
		{
			ID: "api", DisplayName: "API Engineer", Domain: "api",
			Instructions:  "Design or implement the assigned API surface: routes, request/response shapes, status codes, versioning.",
			MaxIterations: 6, RequiresWorkspace: true, Priority: 60,
		},
		{
			ID: "migration", DisplayName: "Migration Engineer", Domain: "migration",
			Instructions:  "Write the assigned data or schema migration. Make it reversible where practical and safe to run against live data.",
			MaxIterations: 5, RequiresWorkspace: true, Priority: 60,
		},
		{
			ID: "db", DisplayName: "Database Engineer", Domain: "db",
			Instructions:  "Design or modify the assigned schema, queries, or indexes. Favor correctness and the project's existing conventions over novelty.",
			MaxIterations: 6, RequiresWorkspace: true, Priority: 60,
		},
		{
			ID: "devops", DisplayName: "DevOps Engineer", Domain: "devops",
			Instructions:  "Set up or modify the assigned build, CI/CD, or deployment configuration.",
			MaxIterations: 5, RequiresWorkspace: true, Priority: 55,
		},
		{
			ID: "architect", DisplayName: "Architect", Domain: "architect",
			Instructions:  "Produce the architecture for the requested application: component tree, tech stack, environment variables, integrations.",
			MaxIterations: 3, Priority: 85,
		},
		{
			ID: "frontend", DisplayName: "Frontend Engineer", Domain: "frontend",
			Instructions:  "Implement the assigned frontend task: components, state, styling, client-side behavior.",
			MaxIterations: 8, RequiresWorkspace: true, Priority: 65,
		},
		{
			ID: "backend", DisplayName: "Backend Engineer", Domain: "backend",
			Instructions:  "Implement the assigned backend task: services, handlers, persistence, background jobs.",
			MaxIterations: 8, RequiresWorkspace: true, Priority: 65,
		},
	}
}
