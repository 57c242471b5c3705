package bootstrap

import (
	"context"
	"log"

	"study-tracker-be/internal/config"
	"study-tracker-be/internal/controller"
	"study-tracker-be/internal/idgen"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/internal/service"
	"study-tracker-be/pkg/notebook"
	"study-tracker-be/pkg/notebook/rest"
	"study-tracker-be/pkg/storage"
	"study-tracker-be/pkg/storage/driver"
	s3store "study-tracker-be/pkg/storage/s3"

	pktNats "study-tracker-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ProgramController      controller.IProgramController
	CollaboratorController controller.ICollaboratorController
	AssayTypeController    controller.IAssayTypeController
	StudyController        controller.IStudyController
	AssayController        controller.IAssayController
	NotebookController     controller.INotebookController
	AuthController         controller.IAuthController
	UserController         controller.IUserController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Closers
	NatsPublisher *pktNats.Publisher
	Logger        *logger.ZapLogger
}

// Backends holds the external systems folders and entries are provisioned in.
// Either may be nil when its driver is "none".
type Backends struct {
	Storage   storage.Backend
	Notebook  notebook.Backend
	Directory *notebook.Directory
}

// OpenBackends connects the storage and notebook drivers named in cfg.
func OpenBackends(ctx context.Context, cfg *config.Config) (*Backends, error) {
	storageBackend, err := driver.Open(ctx, driver.Config{
		Driver:       cfg.Storage.Driver,
		MaxDepth:     cfg.Storage.MaxDepth,
		LocalRoot:    cfg.Storage.LocalRoot,
		LocalBaseURL: cfg.Storage.LocalBaseURL,
		S3: s3store.Config{
			Region:          cfg.Storage.S3.Region,
			Bucket:          cfg.Storage.S3.Bucket,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			SessionToken:    cfg.Storage.S3.SessionToken,
			PathStyle:       cfg.Storage.S3.PathStyle,
			PublicBaseURL:   cfg.Storage.S3.PublicBaseURL,
		},
	})
	if err != nil {
		return nil, err
	}

	backends := &Backends{Storage: storageBackend}
	if cfg.Notebook.Driver == string(notebook.DriverREST) {
		client, err := rest.New(rest.Options{
			BaseURL:   cfg.Notebook.BaseURL,
			APIKey:    cfg.Notebook.APIKey,
			UserAgent: "study-tracker-be",
			PageSize:  cfg.Notebook.PageSize,
		})
		if err != nil {
			return nil, err
		}
		backends.Notebook = client
		backends.Directory = notebook.NewDirectory(client, cfg.Notebook.CacheTTL)
	}
	return backends, nil
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Backends
	backends, err := OpenBackends(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize backends: %v", err)
	}
	if backends.Storage == nil {
		log.Printf("[INFO] Storage integration disabled")
	} else {
		log.Printf("[INFO] Using Storage Driver: %s", backends.Storage.Driver())
	}
	if backends.Notebook == nil {
		log.Printf("[INFO] Notebook integration disabled")
	}

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	var eventPublisher service.IEventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}

	// 4. Provisioning
	codes := idgen.NewGenerator(uowFactory, idgen.Options{
		Padding:  cfg.Provisioning.CodePadding,
		Attempts: cfg.Provisioning.CodeAttempts,
	})
	orchestrator := provisioning.NewOrchestrator(
		uowFactory,
		codes,
		backends.Storage,
		backends.Notebook,
		backends.Directory,
		sysLogger,
		provisioning.Config{
			CallTimeout:     cfg.Provisioning.CallTimeout,
			PersistAttempts: cfg.Provisioning.PersistAttempts,
		},
	)
	reconciler := provisioning.NewReconciler(uowFactory, backends.Storage, backends.Notebook, sysLogger, cfg.Provisioning.CallTimeout)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.SummaryTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.SummaryTopic,
		uowFactory,
		backends.Storage,
		sysLogger,
	)

	programService := service.NewProgramService(uowFactory, backends.Storage, backends.Notebook, sysLogger, cfg.Provisioning.CallTimeout)
	collaboratorService := service.NewCollaboratorService(uowFactory)
	assayTypeService := service.NewAssayTypeService(uowFactory)
	studyService := service.NewStudyService(uowFactory, orchestrator, publisherService, eventPublisher, sysLogger)
	assayService := service.NewAssayService(uowFactory, orchestrator, publisherService, eventPublisher, sysLogger)
	folderService := service.NewFolderService(
		uowFactory,
		backends.Storage,
		reconciler,
		eventPublisher,
		sysLogger,
		cfg.Storage.MaxDepth,
		cfg.Provisioning.CallTimeout,
	)
	notebookService := service.NewNotebookService(backends.Notebook, backends.Directory, cfg.Provisioning.CallTimeout)
	authService := service.NewAuthService(uowFactory, cfg.App.JwtSecret)
	userService := service.NewUserService(uowFactory)

	// 6. Controllers
	return &Container{
		ProgramController:      controller.NewProgramController(programService),
		CollaboratorController: controller.NewCollaboratorController(collaboratorService),
		AssayTypeController:    controller.NewAssayTypeController(assayTypeService),
		StudyController:        controller.NewStudyController(studyService, folderService),
		AssayController:        controller.NewAssayController(assayService, folderService),
		NotebookController:     controller.NewNotebookController(notebookService),
		AuthController:         controller.NewAuthController(authService),
		UserController:         controller.NewUserController(userService),

		ConsumerService: consumerService,
		NatsPublisher:   natsPub,
		Logger:          sysLogger,
	}
}
