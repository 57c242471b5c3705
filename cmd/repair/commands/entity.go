package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"study-tracker-be/internal/bootstrap"
	"study-tracker-be/internal/config"
	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/internal/repository/specification"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/internal/service"
	"study-tracker-be/pkg/database"

	pktNats "study-tracker-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	repairTarget string
	repairOutput string
)

var studyCmd = &cobra.Command{
	Use:   "study <code>",
	Short: "Repair the folders of a study",
	Example: `  # Reattach both folders of study ONC-12
  repair study ONC-12

  # Only the storage folder, as JSON
  repair study ONC-12 --target storage --output json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepair(cmd.Context(), service.EntityTypeStudy, args[0])
	},
}

var assayCmd = &cobra.Command{
	Use:     "assay <code>",
	Short:   "Repair the folders of an assay",
	Example: `  repair assay ONC-12-3 --target notebook`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepair(cmd.Context(), service.EntityTypeAssay, args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{studyCmd, assayCmd} {
		c.Flags().StringVarP(&repairTarget, "target", "t", "all", "Folder to repair (storage, notebook or all)")
		c.Flags().StringVarP(&repairOutput, "output", "o", "default", "Output format (default or json)")
		rootCmd.AddCommand(c)
	}
}

func targetKinds(target string) ([]entity.FolderKind, error) {
	switch strings.ToLower(target) {
	case "storage":
		return []entity.FolderKind{entity.FolderKindStorage}, nil
	case "notebook":
		return []entity.FolderKind{entity.FolderKindNotebook}, nil
	case "all", "":
		return []entity.FolderKind{entity.FolderKindStorage, entity.FolderKindNotebook}, nil
	}
	return nil, fmt.Errorf("unknown target %q (valid: storage, notebook, all)", target)
}

func runRepair(ctx context.Context, entityType, code string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	kinds, err := targetKinds(repairTarget)
	if err != nil {
		return err
	}
	if repairOutput != "default" && repairOutput != "json" {
		return fmt.Errorf("unknown output format %q (valid: default, json)", repairOutput)
	}

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	backends, err := bootstrap.OpenBackends(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open backends: %w", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	var eventPublisher service.IEventPublisher
	if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL); err == nil {
		defer natsPub.Close()
		eventPublisher = natsPub
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	id, err := resolveCode(ctx, uowFactory, entityType, code)
	if err != nil {
		return err
	}

	reconciler := provisioning.NewReconciler(uowFactory, backends.Storage, backends.Notebook, sysLogger, cfg.Provisioning.CallTimeout)
	folders := service.NewFolderService(uowFactory, backends.Storage, reconciler, eventPublisher, sysLogger, cfg.Storage.MaxDepth, cfg.Provisioning.CallTimeout)

	var failed bool
	for _, kind := range kinds {
		res, err := folders.Repair(ctx, entityType, id, kind)
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s %s %s: %v\n", entityType, code, strings.ToLower(string(kind)), err)
			continue
		}
		if err := printRepair(code, res); err != nil {
			return err
		}
	}
	if failed {
		return fmt.Errorf("repair of %s %s incomplete", entityType, code)
	}
	return nil
}

func resolveCode(ctx context.Context, uowFactory unitofwork.RepositoryFactory, entityType, code string) (uuid.UUID, error) {
	uow := uowFactory.NewUnitOfWork(ctx)
	spec := specification.ByCode{Code: strings.ToUpper(strings.TrimSpace(code))}
	switch entityType {
	case service.EntityTypeStudy:
		study, err := uow.StudyRepository().FindOne(ctx, spec)
		if err != nil {
			return uuid.Nil, err
		}
		if study != nil {
			return study.Id, nil
		}
	case service.EntityTypeAssay:
		assay, err := uow.AssayRepository().FindOne(ctx, spec)
		if err != nil {
			return uuid.Nil, err
		}
		if assay != nil {
			return assay.Id, nil
		}
	}
	return uuid.Nil, entity.NewNotFoundError(entityType, code)
}

func printRepair(code string, res *dto.RepairResponse) error {
	if repairOutput == "json" {
		return json.NewEncoder(os.Stdout).Encode(res)
	}
	line := fmt.Sprintf("%-8s %-10s %-9s %s", res.Entity, code, strings.ToLower(res.Kind), res.Action)
	if res.BackendCreated {
		line += " (created)"
	}
	if res.Folder != nil {
		line += "  " + res.Folder.Path
	}
	fmt.Println(line)
	return nil
}
