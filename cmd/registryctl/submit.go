package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chaski/registry/internal/workflow"
)

func newSubmitCmd(a *app) *cobra.Command {
	var (
		sets  []string
		links []string
		image string
	)

	cmd := &cobra.Command{
		Use:   "submit <entity>",
		Short: "Fill in and submit a form",
		Long: `Submit validates the given values, uploads the image if one is given and
saves the record. Entities: ` + strings.Join(entityNames(), ", ") + `.

Example:
  registryctl submit evento --set nombre_evento=Robofest --set fecha=2025-03-14 \
    --set tipo_evento=Competencia --image afiche.png
  registryctl submit miembro --set nombre=Ana --link equipo_id=recA1b2C3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := lookupEntity(args[0])
			if err != nil {
				return err
			}

			policy := workflow.ContinueWithoutAttachment
			if a.cfg.GetBool(cfgKeyAbortOnError) {
				policy = workflow.AbortOnUploadFailure
			}
			form := workflow.NewForm(entity, a.client(),
				workflow.WithUploadPolicy(policy),
				workflow.WithLogger(a.logger),
				workflow.WithOnTransition(func(from, to workflow.State) {
					a.logger.Debug("form state", "from", from.String(), "to", to.String())
				}),
			)

			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			for k, v := range values {
				if err := form.Set(k, v); err != nil {
					return err
				}
			}
			linked, err := parseAssignments(links)
			if err != nil {
				return err
			}
			for k, v := range linked {
				if err := form.Link(k, strings.Split(v, ",")...); err != nil {
					return err
				}
			}
			if image != "" {
				data, err := os.ReadFile(image)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				form.Attach(workflow.Image{Name: filepath.Base(image), Data: data})
			}

			out, err := form.Submit(cmd.Context())
			if out != nil {
				for _, w := range out.Warnings {
					fmt.Fprintln(cmd.ErrOrStderr(), w)
				}
				if err != nil {
					return errors.New(out.Message)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out.Message)
				if out.Record != nil {
					fmt.Fprintln(cmd.OutOrStdout(), out.Record.ID)
				}
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&links, "link", nil, "linked record ids as name=id[,id...] (repeatable)")
	cmd.Flags().StringVar(&image, "image", "", "image file to attach")
	return cmd
}

// lookupEntity accepts an entity name (evento) or its table (eventos).
func lookupEntity(name string) (workflow.Entity, error) {
	if e, ok := workflow.Entities[name]; ok {
		return e, nil
	}
	for _, e := range workflow.Entities {
		if string(e.Table) == name {
			return e, nil
		}
	}
	return workflow.Entity{}, fmt.Errorf("unknown entity %q (valid: %s)", name, strings.Join(entityNames(), ", "))
}

func entityNames() []string {
	names := make([]string, 0, len(workflow.Entities))
	for name := range workflow.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseAssignments splits name=value pairs. Later pairs win.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected name=value)", p)
		}
		out[name] = value
	}
	return out, nil
}
