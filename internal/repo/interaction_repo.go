package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/pdflux/internal/model"
	"github.com/xxxsen/pdflux/internal/pkg/dbutil"
)

var interactionFields = []string{
	"id", "document_id", "kind", "messages", "task_type", "result",
	"additional_instructions", "model_used", "processing_time", "ts",
}

// InteractionRepo is append-only: records are created once and only ever
// removed as a batch when their owning document is deleted.
type InteractionRepo struct {
	db *sql.DB
}

func NewInteractionRepo(db *sql.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

func (r *InteractionRepo) Create(ctx context.Context, rec *model.Interaction) error {
	messagesJSON := ""
	if len(rec.Messages) > 0 {
		data, err := json.Marshal(rec.Messages)
		if err != nil {
			return err
		}
		messagesJSON = string(data)
	}
	data := map[string]interface{}{
		"id":                      rec.ID,
		"document_id":             rec.DocumentID,
		"kind":                    rec.Kind,
		"messages":                messagesJSON,
		"task_type":               rec.TaskType,
		"result":                  rec.Result,
		"additional_instructions": rec.Instructions,
		"model_used":              rec.ModelUsed,
		"processing_time":         rec.ProcessingTime,
		"ts":                      rec.Timestamp,
	}
	sqlStr, args, err := builder.BuildInsert("interactions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *InteractionRepo) ListByDocument(ctx context.Context, docID string) ([]model.Interaction, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"_orderby":    "ts desc",
	}
	sqlStr, args, err := builder.BuildSelect("interactions", where, interactionFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.Interaction
	for rows.Next() {
		var rec model.Interaction
		var messagesJSON string
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.Kind, &messagesJSON, &rec.TaskType,
			&rec.Result, &rec.Instructions, &rec.ModelUsed, &rec.ProcessingTime, &rec.Timestamp); err != nil {
			return nil, err
		}
		if messagesJSON != "" {
			if err := json.Unmarshal([]byte(messagesJSON), &rec.Messages); err != nil {
				return nil, err
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *InteractionRepo) DeleteByDocument(ctx context.Context, docID string) error {
	where := map[string]interface{}{
		"document_id": docID,
	}
	sqlStr, args, err := builder.BuildDelete("interactions", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
