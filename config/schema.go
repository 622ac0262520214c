package config

import (
	"github.com/invopop/jsonschema"
)

// Schema describes the robot config file as a JSON schema, for editors and for checking
// configs before they reach a robot.
func Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
