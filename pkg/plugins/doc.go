// Package plugins groups the bundled source plugins. Each subpackage exposes
// a constructor returning a source.Plugin that can be registered on a
// plugin.Registry:
//
//	reg := plugin.NewRegistry(logger)
//	reg.Register(sqlite.New(sqlite.WithLogger(logger)))
//	reg.Register(git.New())
//	reg.Register(viper.New())
//	reg.Register(s3.New())
//	reg.Register(nats.New())
//
// Plugin options are decoded with plugin.DecodeOptions, so unknown keys are
// rejected and durations may be given as strings.
package plugins
