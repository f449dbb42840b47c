package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"artifact-version-service/internal/adapters/primary/flatfile"
	"artifact-version-service/internal/adapters/primary/http/dto"
	"artifact-version-service/internal/adapters/secondary/postgres"
	"artifact-version-service/internal/bootstrap"
	"artifact-version-service/internal/config"
	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/services"
)

// --- Global Command Variables ---
var (
	projectFlag  string
	versionFlag  string
	bumpFlag     string
	majorFlag    int
	minorFlag    int
	revisionFlag int
	stepsFlag    int
	baselineFlag string
	targetFlag   string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:           "versionctl",
		Short:         "Manage project versions and versioned artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			bootstrap.InitLogger(cfg)
			return nil
		},
	}

	// --- Migrations ---
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the Postgres schema",
	}
	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.MigrateUp(cfg.Database.DSN())
		},
	}
	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.MigrateDown(cfg.Database.DSN(), stepsFlag)
		},
	}

	// --- Versions ---
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Create and list project versions",
	}
	versionCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a version from explicit numbers or a bump of the latest",
		RunE:  createVersion,
	}
	versionListCmd = &cobra.Command{
		Use:   "list",
		Short: "List a project's versions in order",
		RunE:  listVersions,
	}

	// --- Import ---
	importCmd = &cobra.Command{
		Use:   "import [artifacts|trace-links] [file]",
		Short: "Commit a CSV or XLSX file as the complete set for a version",
		Args:  cobra.ExactArgs(2),
		RunE:  importFile,
	}

	// --- Delta ---
	deltaCmd = &cobra.Command{
		Use:   "delta",
		Short: "Show what changed between two versions of a project",
		RunE:  showDelta,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "Project ID")

	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateDownCmd.Flags().IntVar(&stepsFlag, "steps", 1, "Number of migrations to roll back (0 rolls back all)")

	rootCmd.AddCommand(versionCmd)
	versionCmd.AddCommand(versionCreateCmd)
	versionCmd.AddCommand(versionListCmd)
	versionCreateCmd.Flags().StringVar(&bumpFlag, "bump", "", "Bump the latest version: major, minor or revision")
	versionCreateCmd.Flags().IntVar(&majorFlag, "major", 0, "Major number")
	versionCreateCmd.Flags().IntVar(&minorFlag, "minor", 0, "Minor number")
	versionCreateCmd.Flags().IntVar(&revisionFlag, "revision", 0, "Revision number")

	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&versionFlag, "version", "", "Target version ID")

	rootCmd.AddCommand(deltaCmd)
	deltaCmd.Flags().StringVar(&baselineFlag, "baseline", "", "Baseline version ID")
	deltaCmd.Flags().StringVar(&targetFlag, "target", "", "Target version ID")
}

// withRegistry opens storage, runs fn and closes storage again.
func withRegistry(ctx context.Context, fn func(reg *services.Registry) error) error {
	storage, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()
	return fn(storage.Registry(nil))
}

func parseID(flag, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("--%s is required", flag)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return id, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func createVersion(cmd *cobra.Command, args []string) error {
	projectID, err := parseID("project", projectFlag)
	if err != nil {
		return err
	}
	explicit := cmd.Flags().Changed("major") || cmd.Flags().Changed("minor") || cmd.Flags().Changed("revision")
	if bumpFlag != "" && explicit {
		return errors.New("use either --bump or --major/--minor/--revision")
	}

	ctx := cmd.Context()
	return withRegistry(ctx, func(reg *services.Registry) error {
		var (
			v   *domain.ProjectVersion
			err error
		)
		if bumpFlag != "" {
			v, err = reg.Versions.CreateNext(ctx, projectID, domain.VersionBump(bumpFlag))
		} else {
			v, err = reg.Versions.Create(ctx, projectID, majorFlag, minorFlag, revisionFlag)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, dto.ToVersionResponse(v))
	})
}

func listVersions(cmd *cobra.Command, args []string) error {
	projectID, err := parseID("project", projectFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withRegistry(ctx, func(reg *services.Registry) error {
		versions, err := reg.Versions.List(ctx, projectID)
		if err != nil {
			return err
		}
		return printJSON(cmd, dto.ToListVersionsResponse(versions))
	})
}

func importFile(cmd *cobra.Command, args []string) error {
	projectID, err := parseID("project", projectFlag)
	if err != nil {
		return err
	}
	versionID, err := parseID("version", versionFlag)
	if err != nil {
		return err
	}

	what, path := args[0], args[1]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := cmd.Context()
	return withRegistry(ctx, func(reg *services.Registry) error {
		importer := flatfile.NewImporter(reg)
		name := filepath.Base(path)

		switch what {
		case "artifacts":
			result, err := importer.ImportArtifacts(ctx, projectID, versionID, name, f)
			if err != nil {
				return err
			}
			return printJSON(cmd, dto.ToCommitResponse(result))
		case "trace-links":
			result, err := importer.ImportTraceLinks(ctx, projectID, versionID, name, f)
			if err != nil {
				return err
			}
			return printJSON(cmd, dto.ToCommitResponse(result))
		default:
			return fmt.Errorf("unknown import target %q: want artifacts or trace-links", what)
		}
	})
}

func showDelta(cmd *cobra.Command, args []string) error {
	baselineID, err := parseID("baseline", baselineFlag)
	if err != nil {
		return err
	}
	targetID, err := parseID("target", targetFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withRegistry(ctx, func(reg *services.Registry) error {
		delta, err := reg.Delta.Calculate(ctx, baselineID, targetID)
		if err != nil {
			return err
		}
		return printJSON(cmd, dto.ToDeltaResponse(delta))
	})
}
