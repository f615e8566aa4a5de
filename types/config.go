package types

// Config holds the configuration shared by an engine and its continuous
// manager: the component catalog, logging, and the aspect hooks that get a
// chance to observe or veto execution.
type Config struct {
	// ComponentsRegistry is the catalog consulted to resolve a node's
	// ComponentID to a ComponentSpec and Executor. NewConfig leaves it nil
	// unless WithComponentsRegistry sets it.
	ComponentsRegistry ComponentRegistry

	// Logger receives diagnostic output. Defaults to DefaultLogger().
	Logger Logger

	// Aspects run before/after node and graph execution (see aspect.go).
	Aspects AspectList

	// OnDebug, when set, is called with every executed node's inputs and
	// outputs.
	OnDebug func(nodeID string, inputs, outputs map[string]NodeValue, err error)
}

// NewConfig builds a Config with defaults, applying opts in order. The
// first option to return an error short-circuits the rest.
func NewConfig(opts ...Option) (Config, error) {
	c := Config{
		Logger: DefaultLogger(),
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}
