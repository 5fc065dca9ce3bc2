// internal/app/features/jobcards/templates.go
package jobcards

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "jobcards",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
