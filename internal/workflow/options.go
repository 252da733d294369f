package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/chaski/registry/internal/model"
)

// DefaultClassifications are always offered for events.
var DefaultClassifications = []string{"Ecuatoriano", "Internacional"}

// ClassificationOptions returns the distinct event classifications in use,
// in record order, followed by any default not already among them. When the
// list call fails the defaults are still returned, along with the error as a
// warning.
func ClassificationOptions(ctx context.Context, gw Gateway) ([]string, error) {
	recs, err := gw.List(ctx, model.TableEventos)
	if err != nil {
		return append([]string(nil), DefaultClassifications...), fmt.Errorf("list classifications: %w", err)
	}

	var opts []string
	seen := make(map[string]bool)
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		opts = append(opts, c)
	}
	for _, rec := range recs {
		add(strings.TrimSpace(rec.String("clasificacion")))
	}
	for _, d := range DefaultClassifications {
		add(d)
	}
	return opts, nil
}

// TeamOption is a team a member can be linked to.
type TeamOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamOptions lists the teams for the member form.
func TeamOptions(ctx context.Context, gw Gateway) ([]TeamOption, error) {
	recs, err := gw.List(ctx, model.TableEquipos)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	opts := make([]TeamOption, 0, len(recs))
	for _, rec := range recs {
		name := rec.String("nombre_equipo")
		if name == "" {
			name = rec.ID
		}
		opts = append(opts, TeamOption{ID: rec.ID, Name: name})
	}
	return opts, nil
}
