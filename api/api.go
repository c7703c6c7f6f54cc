// Package api хранит описание HTTP API, которое отдаётся по /openapi.yaml
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
