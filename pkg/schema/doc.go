// Package schema validates configuration trees and fills in defaults.
//
// The loader only depends on the Schema interface: Check reports every
// violation with its path, and Parse returns the typed, defaulted tree. Two
// implementations are provided.
//
// Declarative schemas are built from Field values:
//
//	s := schema.Object(map[string]*schema.Field{
//	    "server": schema.Object(map[string]*schema.Field{
//	        "host": schema.String().Default("localhost"),
//	        "port": schema.Integer().Min(1).Max(65535).Default(3000),
//	    }),
//	    "timeout": schema.Duration().Optional(),
//	})
//
// or loaded from a YAML/JSON definition with FromDefinition. Unknown keys
// are dropped from the output unless the object is marked Passthrough.
//
// Struct schemas decode into a Go struct with mapstructure, fill zero fields
// from a defaults value with mergo and run go-playground/validator tags:
//
//	type Server struct {
//	    Host string `mapstructure:"host" validate:"required,hostname"`
//	    Port int    `mapstructure:"port" validate:"min=1,max=65535"`
//	}
//	s := schema.Struct(Server{Host: "localhost", Port: 3000})
package schema
