// Package validation checks configuration and command-line input.
//
// Struct tag validation runs go-playground/validator with yaml key names in
// messages and two extra tags, header_line and proxy_url:
//
//	type Config struct {
//	    Transport string   `yaml:"transport" validate:"required,oneof=stream native"`
//	    Proxy     string   `yaml:"proxy" validate:"omitempty,proxy_url"`
//	    Headers   []string `yaml:"headers" validate:"dive,header_line"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects errors fluently:
//
//	err := validation.New().
//	    OneOf("format", format, []string{"yaml", "json"}).
//	    OptionalUUID("request_id", id).
//	    Validate()
//
// Both return an *errors.AppError with code INVALID_INPUT whose
// "fields" detail lists every failing field.
package validation
