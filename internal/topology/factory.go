package topology

// Build creates a plan for the named topology. Unknown names and invalid
// configurations are rejected with a *ValidationError before any phase
// can execute.
func Build(t Type, providers []string, cfg Config) (*Plan, error) {
	switch t {
	case TypeMesh:
		return BuildMesh(providers, cfg)
	case TypeStar:
		return BuildStar(providers, cfg)
	case TypeTournament:
		return BuildTournament(providers, cfg)
	case TypeMapReduce:
		return BuildMapReduce(providers, cfg)
	case TypeTree:
		return BuildTree(providers, cfg)
	case TypePipeline:
		return BuildPipeline(providers, cfg)
	case TypePanel:
		return BuildPanel(providers, cfg)
	default:
		return nil, validationErrorf(CodeUnknownTopology, "unknown topology type: %s", t)
	}
}

// Types lists every supported topology, in documentation order.
func Types() []Type {
	return []Type{
		TypeMesh, TypeStar, TypeTournament, TypeMapReduce,
		TypeTree, TypePipeline, TypePanel,
	}
}
