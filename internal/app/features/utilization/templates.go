// internal/app/features/utilization/templates.go
package utilization

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "utilization",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
