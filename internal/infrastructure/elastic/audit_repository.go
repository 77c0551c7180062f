// Package elastic ships auth audit events to an Elasticsearch index.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
	"github.com/oksasatya/igrotrend-auth/internal/domain/repository"
)

type AuditRepository struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
}

func NewAuditRepository(es *elasticsearch.Client, index string) *AuditRepository {
	return &AuditRepository{ES: es, Index: index, Timeout: 3 * time.Second}
}

type auditDoc struct {
	UserID    string         `json:"user_id,omitempty"`
	Email     string         `json:"email,omitempty"`
	Action    string         `json:"action"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"@timestamp"`
}

func (r *AuditRepository) Record(ctx context.Context, e entity.AuditEvent) error {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	b, err := json.Marshal(auditDoc{
		UserID:    e.UserID,
		Email:     e.Email,
		Action:    e.Action,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: r.Index, DocumentID: id, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	res, err := req.Do(c, r.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
