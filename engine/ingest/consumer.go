package ingest

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/investiq-ai/investiq/engine/domain"
	"github.com/investiq-ai/investiq/pkg/natsutil"
)

// RebuildRequest asks for a full corpus rebuild from the record source.
type RebuildRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RecordsMessage carries a batch of company records to build from.
type RecordsMessage struct {
	Records []domain.CompanyRecord `json:"records"`
}

// DLQMessage is published when rebuild work exhausts its retries.
type DLQMessage struct {
	Subject string                 `json:"subject"`
	Reason  string                 `json:"reason,omitempty"`
	Records []domain.CompanyRecord `json:"records,omitempty"`
	Error   string                 `json:"error"`
	Retries int                    `json:"retries"`
}

// StartConsumers subscribes to the rebuild and records subjects. Failed
// work is requeued with an incremented retry count and lands on the DLQ
// after MaxRetries attempts.
func StartConsumers(nc *nats.Conn, deps Deps) ([]*nats.Subscription, error) {
	log := deps.logger()

	rebuildSub, err := natsutil.Subscribe(nc, RebuildSubject, func(ctx context.Context, req RebuildRequest, retries int) {
		if deps.Records == nil {
			log.Error("rebuild requested but no record source configured")
			return
		}
		records, err := deps.Records(ctx)
		if err != nil {
			requeue(ctx, nc, deps, RebuildSubject, req, nil, retries, err)
			return
		}
		build, err := Rebuild(ctx, records, deps)
		if err != nil {
			requeue(ctx, nc, deps, RebuildSubject, req, nil, retries, err)
			return
		}
		log.Info("rebuild complete", "reason", req.Reason, "documents", build.Store.Size())
		if deps.OnBuild != nil {
			deps.OnBuild(ctx, build)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: subscribe %s: %w", RebuildSubject, err)
	}

	recordsSub, err := natsutil.Subscribe(nc, RecordsSubject, func(ctx context.Context, msg RecordsMessage, retries int) {
		if len(msg.Records) == 0 {
			log.Warn("empty records message dropped")
			return
		}
		build, err := Rebuild(ctx, msg.Records, deps)
		if err != nil {
			requeue(ctx, nc, deps, RecordsSubject, RebuildRequest{}, msg.Records, retries, err)
			return
		}
		log.Info("records build complete", "records", len(msg.Records), "documents", build.Store.Size())
		if deps.OnBuild != nil {
			deps.OnBuild(ctx, build)
		}
	})
	if err != nil {
		rebuildSub.Unsubscribe()
		return nil, fmt.Errorf("ingest: subscribe %s: %w", RecordsSubject, err)
	}

	return []*nats.Subscription{rebuildSub, recordsSub}, nil
}

func requeue(ctx context.Context, nc *nats.Conn, deps Deps, subject string, req RebuildRequest, records []domain.CompanyRecord, retries int, cause error) {
	log := deps.logger()
	retries++
	log.Error("rebuild work failed", "subject", subject, "retry", retries, "error", cause)

	if retries >= MaxRetries {
		dlq := DLQMessage{
			Subject: subject,
			Reason:  req.Reason,
			Records: records,
			Error:   cause.Error(),
			Retries: retries,
		}
		if err := natsutil.Publish(ctx, nc, DLQSubject, dlq); err != nil {
			log.Error("dlq publish failed", "error", err)
		}
		return
	}

	var err error
	if subject == RecordsSubject {
		err = natsutil.PublishRetry(ctx, nc, subject, RecordsMessage{Records: records}, retries)
	} else {
		err = natsutil.PublishRetry(ctx, nc, subject, req, retries)
	}
	if err != nil {
		log.Error("retry publish failed", "subject", subject, "error", err)
	}
}
