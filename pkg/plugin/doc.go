// Package plugin provides the registry through which named source plugins
// are made available to the loading pipeline.
//
// There is no package-level registry. Callers create a Registry, register
// plugins on it and pass it in the loader options:
//
//	reg := plugin.NewRegistry(nil)
//	reg.Register(plugin.Func("static", func(ctx context.Context, opts map[string]any, lc source.LoadContext) (map[string]any, error) {
//	    return map[string]any{"region": "eu-west-1"}, nil
//	}))
//
//	cfg, err := config.Load(ctx, config.Options{
//	    Sources: []source.Source{source.PluginSource("static", nil)},
//	    Plugins: reg,
//	})
package plugin
