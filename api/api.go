// Package api holds the OpenAPI document of the kiosk HTTP surface.
package api

import _ "embed"

// Spec is openapi.yaml as shipped with the binary.
//
//go:embed openapi.yaml
var Spec []byte
