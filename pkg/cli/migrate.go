package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/quadrant/pkg/cli/config"
	"github.com/secmon-lab/quadrant/pkg/repository/firestore"
	"github.com/secmon-lab/quadrant/pkg/repository/postgres"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := append(repoCfg.Flags(), &cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Preview changes without applying",
		Destination: &dryRun,
	})

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create Firestore indexes or the PostgreSQL schema",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Migrate configuration",
				"repository", repoCfg,
				"dryRun", dryRun)

			switch repoCfg.Backend() {
			case config.BackendFirestore:
				return migrateFirestore(ctx, &repoCfg, dryRun)
			case config.BackendPostgres:
				return migratePostgres(ctx, &repoCfg, dryRun)
			default:
				return goerr.New("migrate supports firestore and postgres backends only",
					goerr.V("backend", repoCfg.Backend()))
			}
		},
	}
}

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()

	if repoCfg.ProjectID() == "" {
		return goerr.New("firestore-project-id is required when using firestore backend")
	}

	indexConfig := getIndexConfig(repoCfg.CollectionPrefix())

	client, err := fireconf.NewClient(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID())
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if !dryRun {
		logger.Info("Applying migrations")
		if err := client.Migrate(ctx, indexConfig); err != nil {
			return goerr.Wrap(err, "failed to apply migrations")
		}
		logger.Info("Migrations applied successfully")
		return nil
	}

	plan, err := client.GetMigrationPlan(ctx, indexConfig)
	if err != nil {
		return goerr.Wrap(err, "failed to create migration plan")
	}

	steps := make([]planStep, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		steps = append(steps, planStep{
			target:      fmt.Sprint(step.Collection),
			operation:   fmt.Sprint(step.Operation),
			description: fmt.Sprint(step.Description),
			destructive: step.Destructive,
		})
	}
	printPlan(os.Stdout, steps)
	return nil
}

func migratePostgres(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	if dryRun {
		steps := make([]planStep, 0, len(postgres.Schema))
		for _, stmt := range postgres.Schema {
			steps = append(steps, planStep{
				target:      "postgres",
				operation:   "apply",
				description: stmt,
			})
		}
		printPlan(os.Stdout, steps)
		return nil
	}

	repo, err := repoCfg.Postgres(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close postgres repository", "error", err.Error())
		}
	}()

	if err := repo.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to migrate postgres schema")
	}
	logging.Default().Info("Schema applied successfully", "statements", len(postgres.Schema))
	return nil
}

type planStep struct {
	target      string
	operation   string
	description string
	destructive bool
}

func printPlan(w io.Writer, steps []planStep) {
	if len(steps) == 0 {
		_, _ = color.New(color.FgGreen).Fprintln(w, "No changes required")
		return
	}

	header := color.New(color.Bold)
	op := color.New(color.FgCyan)
	warn := color.New(color.FgRed, color.Bold)

	_, _ = header.Fprintf(w, "Migration plan (%d steps)\n", len(steps))
	for i, step := range steps {
		_, _ = fmt.Fprintf(w, "%3d. ", i+1)
		_, _ = op.Fprintf(w, "[%s] ", step.operation)
		_, _ = fmt.Fprintf(w, "%s: %s", step.target, strings.Join(strings.Fields(step.description), " "))
		if step.destructive {
			_, _ = warn.Fprint(w, " (destructive)")
		}
		_, _ = fmt.Fprintln(w)
	}
}

// getIndexConfig returns the composite indexes the Firestore repository queries need
func getIndexConfig(prefix string) *fireconf.Config {
	name := func(collection string) string {
		if prefix == "" {
			return collection
		}
		return prefix + "_" + collection
	}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: name(firestore.CollectionTodos),
				Indexes: []fireconf.Index{
					// List: user_id ASC, importance_score DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "user_id", Order: fireconf.OrderAscending},
							{Path: "importance_score", Order: fireconf.OrderDescending},
						},
					},
				},
			},
			{
				Name: name(firestore.CollectionSlackConnections),
				Indexes: []fireconf.Index{
					// GetByUserAndWorkspace
					{
						Fields: []fireconf.IndexField{
							{Path: "user_id", Order: fireconf.OrderAscending},
							{Path: "workspace_id", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
