// Package api embeds the OpenAPI document served at /swagger/spec.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPISpec []byte
