package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"autochase/internal/models"
)

// GetSettings loads the workspace settings row, falling back to the default
// configuration when the workspace has none yet.
func (d *DB) GetSettings(ctx context.Context, workspace string) (models.Settings, error) {
	var raw []byte
	err := d.Pool.QueryRow(ctx, `
        SELECT data FROM ac_settings WHERE workspace_id = $1`, workspace).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultSettings(), nil
		}
		return models.Settings{}, fmt.Errorf("failed to get settings for workspace %s: %w", workspace, err)
	}

	var s models.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode settings for workspace %s: %w", workspace, err)
	}
	return s, nil
}

func (d *DB) UpsertSettings(ctx context.Context, workspace string, s models.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = d.Pool.Exec(ctx, `
        INSERT INTO ac_settings (workspace_id, data, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (workspace_id) DO UPDATE SET data = $2, updated_at = $3`,
		workspace, raw, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert settings for workspace %s: %w", workspace, err)
	}
	return nil
}

// ActivatePlan sets the workspace's subscription tier, preserving the rest
// of its settings.
func (d *DB) ActivatePlan(ctx context.Context, workspace string, plan models.PlanTier) error {
	s, err := d.GetSettings(ctx, workspace)
	if err != nil {
		return err
	}
	s.Plan = plan
	return d.UpsertSettings(ctx, workspace, s)
}
