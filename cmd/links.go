package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/shared"
)

// linkParamsFromFlags overlays the provided flags on base. The display order
// is never a flag, so an update keeps the record's current position.
func linkParamsFromFlags(cmd *cli.Command, base models.LinkParams) models.LinkParams {
	base.Label = cmd.String("label")
	base.URL = cmd.String("url")
	if cmd.IsSet("type") || base.Type == "" {
		base.Type = models.LinkType(cmd.String("type"))
	}
	return base
}

// findLink looks an official link up by ID.
func (r *Runner) findLink(ctx context.Context, id int64) (models.OfficialLink, error) {
	links, err := r.client.AdminLinks(ctx)
	if err != nil {
		return models.OfficialLink{}, err
	}
	for _, link := range links {
		if link.ID == id {
			return link, nil
		}
	}
	return models.OfficialLink{}, fmt.Errorf("%w: link %d", shared.ErrNotFound, id)
}

// LinksList prints official links in display order.
func (r *Runner) LinksList(ctx context.Context, cmd *cli.Command) error {
	links, err := r.client.AdminLinks(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(links, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Official Links (%d)", len(links)))
	for _, link := range links {
		r.writePlain("%d. [%d] %s → %s (%s)\n", link.Order, link.ID, link.Label, link.URL, link.Type)
	}
	return nil
}

// LinksCreate creates an official link from flags.
func (r *Runner) LinksCreate(ctx context.Context, cmd *cli.Command) error {
	link, err := r.client.CreateLink(ctx, linkParamsFromFlags(cmd, models.LinkParams{}))
	if err != nil {
		return err
	}

	r.logger.Info("link created", "id", link.ID)
	return r.writePlain("✓ Created link %d: %s\n", link.ID, link.Label)
}

// LinksUpdate replaces a link's editable fields.
func (r *Runner) LinksUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	current, err := r.findLink(ctx, id)
	if err != nil {
		return err
	}

	link, err := r.client.UpdateLink(ctx, id, linkParamsFromFlags(cmd, current.Params()))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Updated link %d: %s\n", link.ID, link.Label)
}

// LinksDelete removes a link after confirmation.
func (r *Runner) LinksDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	ok, err := r.confirm(fmt.Sprintf("Delete link %d? This cannot be undone.", id), cmd.Bool("yes"))
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlain("Aborted\n")
	}

	if err := r.client.DeleteLink(ctx, id); err != nil {
		return err
	}

	r.logger.Info("link deleted", "id", id)
	return r.writePlain("✓ Deleted link %d\n", id)
}

// LinksReorder assigns display order from a comma separated ID list.
func (r *Runner) LinksReorder(ctx context.Context, cmd *cli.Command) error {
	raw := strings.Split(cmd.String("ids"), ",")

	ids := make([]int64, 0, len(raw))
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ids must be numeric, got %q", shared.ErrInvalidFlag, part)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return fmt.Errorf("%w: ids list is empty", shared.ErrInvalidFlag)
	}

	if err := r.client.ReorderLinks(ctx, ids); err != nil {
		return err
	}
	return r.writePlain("✓ Reordered %d links\n", len(ids))
}
