package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/shared"
)

// parseIDArg reads the positional id argument as an int64.
func parseIDArg(cmd *cli.Command) (int64, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: id argument is required", shared.ErrMissingArgument)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be numeric, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// episodeParamsFromFlags overlays the provided flags on base. Optional flags
// that were not passed keep base's value, so an update only touches the fields
// the caller named.
func episodeParamsFromFlags(cmd *cli.Command, base models.EpisodeParams) models.EpisodeParams {
	base.Title = cmd.String("title")
	base.Description = cmd.String("description")
	if cmd.IsSet("thumbnail") {
		base.ThumbnailURL = cmd.String("thumbnail")
	}
	if cmd.IsSet("spotify") {
		base.SpotifyURL = cmd.String("spotify")
	}
	if cmd.IsSet("youtube") {
		base.YouTubeURL = cmd.String("youtube")
	}
	if cmd.IsSet("tags") {
		base.Tags = models.ParseTags(cmd.String("tags"))
	}
	return base
}

// findEpisode looks an episode up by ID, drafts included.
func (r *Runner) findEpisode(ctx context.Context, id int64) (models.Episode, error) {
	episodes, err := r.client.AdminEpisodes(ctx)
	if err != nil {
		return models.Episode{}, err
	}
	for _, ep := range episodes {
		if ep.ID == id {
			return ep, nil
		}
	}
	return models.Episode{}, fmt.Errorf("%w: episode %d", shared.ErrNotFound, id)
}

// EpisodesList prints every episode, drafts included.
func (r *Runner) EpisodesList(ctx context.Context, cmd *cli.Command) error {
	episodes, err := r.client.AdminEpisodes(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(episodes, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Episodes (%d)", len(episodes)))
	for _, ep := range episodes {
		marker := " "
		if ep.Status == models.StatusDraft {
			marker = "·"
		}
		r.writePlain("%s [%d] %s (%s)\n", marker, ep.ID, ep.Title, ep.Status)
		if len(ep.Tags) > 0 {
			r.writePlain("      %s\n", ep.Tags)
		}
	}
	return nil
}

// EpisodesGet prints a single episode, draft or published.
func (r *Runner) EpisodesGet(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	ep, err := r.findEpisode(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(ep, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Episode %d", ep.ID))
	r.writePlain("Title:       %s\n", ep.Title)
	r.writePlain("Status:      %s\n", ep.Status)
	r.writePlain("Description: %s\n", ep.Description)
	if len(ep.Tags) > 0 {
		r.writePlain("Tags:        %s\n", ep.Tags)
	}
	if ep.SpotifyURL != "" {
		r.writePlain("Spotify:     %s\n", ep.SpotifyURL)
	}
	if ep.YouTubeURL != "" {
		r.writePlain("YouTube:     %s\n", ep.YouTubeURL)
	}
	return nil
}

// EpisodesCreate creates a draft episode from flags.
func (r *Runner) EpisodesCreate(ctx context.Context, cmd *cli.Command) error {
	episode, err := r.client.CreateEpisode(ctx, episodeParamsFromFlags(cmd, models.EpisodeParams{}))
	if err != nil {
		return err
	}

	r.logger.Info("episode created", "id", episode.ID)
	return r.writePlain("✓ Created episode %d: %s\n", episode.ID, episode.Title)
}

// EpisodesUpdate replaces an episode's editable fields.
func (r *Runner) EpisodesUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	current, err := r.findEpisode(ctx, id)
	if err != nil {
		return err
	}

	episode, err := r.client.UpdateEpisode(ctx, id, episodeParamsFromFlags(cmd, current.Params()))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Updated episode %d: %s\n", episode.ID, episode.Title)
}

// EpisodesDelete removes an episode after confirmation.
func (r *Runner) EpisodesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	ok, err := r.confirm(fmt.Sprintf("Delete episode %d? This cannot be undone.", id), cmd.Bool("yes"))
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlain("Aborted\n")
	}

	if err := r.client.DeleteEpisode(ctx, id); err != nil {
		return err
	}

	r.logger.Info("episode deleted", "id", id)
	return r.writePlain("✓ Deleted episode %d\n", id)
}

// EpisodesPublish makes an episode publicly visible.
func (r *Runner) EpisodesPublish(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	if err := r.client.PublishEpisode(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Published episode %d\n", id)
}

// EpisodesUnpublish returns an episode to draft.
func (r *Runner) EpisodesUnpublish(ctx context.Context, cmd *cli.Command) error {
	id, err := parseIDArg(cmd)
	if err != nil {
		return err
	}

	if err := r.client.UnpublishEpisode(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Unpublished episode %d\n", id)
}
