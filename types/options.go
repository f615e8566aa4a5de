package types

// Option configures a Config when passed to NewConfig.
type Option func(*Config) error

// WithComponentsRegistry sets the component catalog used to resolve nodes.
func WithComponentsRegistry(registry ComponentRegistry) Option {
	return func(c *Config) error {
		c.ComponentsRegistry = registry
		return nil
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithAspects appends aspect hooks to the Config's chain; both "before" and
// "after" hooks run in ascending Order() (aspect.go).
func WithAspects(aspects ...Aspect) Option {
	return func(c *Config) error {
		c.Aspects = append(c.Aspects, aspects...)
		return nil
	}
}

// WithOnDebug sets the per-node debug callback.
func WithOnDebug(fn func(nodeID string, inputs, outputs map[string]NodeValue, err error)) Option {
	return func(c *Config) error {
		c.OnDebug = fn
		return nil
	}
}
