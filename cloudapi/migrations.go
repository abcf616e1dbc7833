package cloudapi

import (
	"context"
	"net/url"
	"time"
)

// Migration actions accepted by the migrate endpoint.
const (
	MigrationBegin     = "begin"
	MigrationSync      = "sync"
	MigrationPause     = "pause"
	MigrationSwitch    = "switch"
	MigrationAbort     = "abort"
	MigrationFinalize  = "finalize"
	MigrationAutomatic = "automatic"
)

// ListMigrations returns the account's instance migrations.
func (c *Client) ListMigrations(ctx context.Context) ([]*Migration, error) {
	items, err := c.listAll(ctx, c.path("/migrations"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Migration](items, "migration")
}

// GetMigration returns the migration record for an instance.
func (c *Client) GetMigration(ctx context.Context, instanceIDOrName string) (*Migration, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &Migration{}
	if err := c.get(ctx, c.path("/migrations/%s", id), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MigrationActionOptions controls migration actions.
type MigrationActionOptions struct {
	// Affinity rules constrain target selection on begin/automatic.
	Affinity []string

	// Wait blocks until the action's phase completes (successful, failed,
	// or paused).
	Wait        bool
	WaitTimeout time.Duration
}

// MigrateInstance runs one migration action (begin, sync, pause, switch,
// abort, finalize, automatic) against an instance.
func (c *Client) MigrateInstance(ctx context.Context, instanceIDOrName, action string, opts MigrationActionOptions) (*Migration, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}

	q := url.Values{"action": []string{action}}
	var body interface{}
	if len(opts.Affinity) > 0 {
		body = map[string]interface{}{"affinity": opts.Affinity}
	}
	out := &Migration{}
	if err := c.post(ctx, c.path("/machines/%s/migrate", id), q, body, out); err != nil {
		return nil, err
	}

	if opts.Wait {
		raw, err := c.WaitForMigration(ctx, id, WaitOptions{
			States:  []string{"successful", "failed", "paused", "aborted"},
			Timeout: opts.WaitTimeout,
		})
		if err != nil {
			return out, err
		}
		return decodeOne[Migration](raw, "migration")
	}
	return out, nil
}
