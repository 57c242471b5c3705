// FILE: internal/service/consumer_service.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/logger"
	"study-tracker-be/internal/provisioning"
	"study-tracker-be/internal/repository/unitofwork"
	"study-tracker-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	summaryModule = "SUMMARY"

	EntityTypeStudy = "study"
	EntityTypeAssay = "assay"
)

// IConsumerService writes the summary file of provisioned studies and assays
// into their storage folders.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	storage    storage.Backend
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	storageBackend storage.Backend,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		storage:    storageBackend,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishSummaryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(summaryModule, "Failed to unmarshal summary message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}
	details := map[string]interface{}{"entity_type": payload.EntityType, "entity_id": payload.EntityId.String()}

	if cs.storage == nil {
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	var (
		code    string
		folder  *entity.FolderReference
		content string
	)
	switch payload.EntityType {
	case EntityTypeStudy:
		study, err := provisioning.LoadStudy(ctx, uow, payload.EntityId)
		if err != nil {
			cs.nackUnlessMissing(msg, err, details)
			return
		}
		code, folder, content = study.Code, study.StorageFolder, studySummary(study)
	case EntityTypeAssay:
		assay, err := provisioning.LoadAssay(ctx, uow, payload.EntityId)
		if err != nil {
			cs.nackUnlessMissing(msg, err, details)
			return
		}
		code, folder, content = assay.Code, assay.StorageFolder, assaySummary(assay)
	default:
		cs.logger.Error(summaryModule, "Unknown entity type in summary message", details)
		msg.Ack()
		return
	}

	if folder == nil {
		cs.logger.Info(summaryModule, "Skipping summary, entity has no storage folder", details)
		msg.Ack()
		return
	}

	file, err := cs.storage.UploadFile(ctx, provisioning.StoragePathTarget(folder.Path), storage.Upload{
		Name:        provisioning.SummaryFileName(code),
		ContentType: "text/markdown",
		Body:        bytes.NewReader([]byte(content)),
	})
	if err != nil {
		details["error"] = err.Error()
		cs.logger.Warn(summaryModule, "Failed to upload summary file", details)
		msg.Ack()
		return
	}

	details["path"] = file.Path
	cs.logger.Info(summaryModule, "Summary file uploaded", details)
	msg.Ack()
}

func (cs *consumerService) nackUnlessMissing(msg *message.Message, err error, details map[string]interface{}) {
	details["error"] = err.Error()
	if entityNotFound(err) {
		cs.logger.Warn(summaryModule, "Summary target no longer exists", details)
		msg.Ack()
		return
	}
	cs.logger.Error(summaryModule, "Failed to load summary target", details)
	msg.Nack()
}

func studySummary(s *entity.Study) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", s.Code, s.Name)
	if s.Program != nil {
		fmt.Fprintf(&b, "- **Program:** %s\n", s.Program.Name)
	}
	if s.ExternalCode != nil {
		fmt.Fprintf(&b, "- **External code:** %s\n", *s.ExternalCode)
	}
	writeCommon(&b, s.Status, s.StartDate.Format("2006-01-02"), s.Description, s.Attributes, s.ExternalLinks)
	if len(s.Keywords) > 0 {
		fmt.Fprintf(&b, "\n## Keywords\n\n%s\n", strings.Join(s.Keywords, ", "))
	}
	return b.String()
}

func assaySummary(a *entity.Assay) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", a.Code, a.Name)
	if a.Study != nil {
		fmt.Fprintf(&b, "- **Study:** %s - %s\n", a.Study.Code, a.Study.Name)
	}
	if a.AssayType != nil {
		fmt.Fprintf(&b, "- **Assay type:** %s\n", a.AssayType.Name)
	}
	writeCommon(&b, a.Status, a.StartDate.Format("2006-01-02"), a.Description, a.Attributes, a.ExternalLinks)
	if len(a.Fields) > 0 {
		b.WriteString("\n## Fields\n\n")
		for _, k := range slices.Sorted(maps.Keys(a.Fields)) {
			fmt.Fprintf(&b, "- **%s:** %v\n", k, a.Fields[k])
		}
	}
	if len(a.Tasks) > 0 {
		b.WriteString("\n## Tasks\n\n")
		for _, t := range a.Tasks {
			fmt.Fprintf(&b, "%d. %s (%s)\n", t.Order+1, t.Label, t.Status)
		}
	}
	return b.String()
}

func writeCommon(b *strings.Builder, status entity.Status, start, description string, attributes map[string]string, links []entity.ExternalLink) {
	fmt.Fprintf(b, "- **Status:** %s\n", status)
	fmt.Fprintf(b, "- **Start date:** %s\n", start)
	if text := provisioning.StripMarkup(description); text != "" {
		fmt.Fprintf(b, "\n## Description\n\n%s\n", text)
	}
	if len(attributes) > 0 {
		b.WriteString("\n## Attributes\n\n")
		for _, k := range slices.Sorted(maps.Keys(attributes)) {
			fmt.Fprintf(b, "- **%s:** %s\n", k, attributes[k])
		}
	}
	if len(links) > 0 {
		b.WriteString("\n## Links\n\n")
		for _, l := range links {
			fmt.Fprintf(b, "- [%s](%s)\n", l.Label, l.Url)
		}
	}
}
