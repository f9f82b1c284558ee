package config

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

const schemaSource = `
#Config: {
	database: {
		path:          string & != ""
		decode_policy: "skip" | "fail"
	}
	log: {
		level:  "debug" | "info" | "warn" | "error"
		format: "text" | "json"
	}
	listing: {
		default_limit: int & >=1 & <=100
		query_timeout: =~"^([0-9]+(ms|s|m|h))+$" | "0" | ""
	}
}
`

// Validate checks cfg against the config schema.
func Validate(cfg *Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(cfg)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
