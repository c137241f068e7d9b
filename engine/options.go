package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for BuildDashboard() and NewCache()
// ============================================================================

// Option configures dashboard behavior via functional options pattern.
type Option func(*config)

type config struct {
	Widgets []WidgetDef // widgets to compute, in display order
	TopN    int         // row cap per aggregation widget, 0 = all
	Verbose bool        // log per-build progress
}

// WithWidgets replaces the default widget set.
func WithWidgets(defs ...WidgetDef) Option {
	return func(c *config) {
		c.Widgets = defs
	}
}

// WithTopN caps the rows of every aggregation widget whose query has no
// explicit limit.
func WithTopN(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

// WithVerbose logs filter and widget progress for each build.
func WithVerbose(v bool) Option {
	return func(c *config) {
		c.Verbose = v
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Widgets: DefaultWidgets(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
