package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/facesense/plugin/embedding"
	"github.com/hrygo/facesense/store"
)

func (d *DB) CreateFaceSample(ctx context.Context, create *store.FaceSample) (*store.FaceSample, error) {
	fields := []string{"uid", "person_id", "embedding", "thumbnail", "owner_box_uid", "encounter_id"}
	placeholderValues := []any{
		create.UID, create.PersonID, embedding.Marshal(create.Embedding),
		create.Thumbnail, create.OwnerBoxUID, create.EncounterID,
	}

	stmt := `INSERT INTO face_sample (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create face sample: %w", err)
	}

	return create, nil
}

func (d *DB) ListFaceSamples(ctx context.Context, find *store.FindFaceSample) ([]*store.FaceSample, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "face_sample.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "face_sample.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.PersonID; v != nil {
		where, args = append(where, "face_sample.person_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, person_id, created_ts, embedding, thumbnail, owner_box_uid, encounter_id
		FROM face_sample
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY face_sample.id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query face samples: %w", err)
	}
	defer rows.Close()

	list := make([]*store.FaceSample, 0)
	for rows.Next() {
		var sample store.FaceSample
		var embeddingBuf []byte
		var ownerBoxUID sql.NullString
		var encounterID sql.NullInt32

		if err := rows.Scan(
			&sample.ID,
			&sample.UID,
			&sample.PersonID,
			&sample.CreatedTs,
			&embeddingBuf,
			&sample.Thumbnail,
			&ownerBoxUID,
			&encounterID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan face sample: %w", err)
		}

		vector, err := embedding.Unmarshal(embeddingBuf)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		sample.Embedding = vector
		if ownerBoxUID.Valid {
			sample.OwnerBoxUID = &ownerBoxUID.String
		}
		if encounterID.Valid {
			sample.EncounterID = &encounterID.Int32
		}
		list = append(list, &sample)
	}

	return list, rows.Err()
}

func (d *DB) UpdateFaceSample(ctx context.Context, update *store.UpdateFaceSample) error {
	set, args := []string{}, []any{}

	if v := update.PersonID; v != nil {
		set, args = append(set, "person_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE face_sample SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update face sample: %w", err)
	}
	return nil
}

func (d *DB) DeleteFaceSample(ctx context.Context, delete *store.DeleteFaceSample) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM face_sample WHERE id = ?", delete.ID); err != nil {
		return fmt.Errorf("failed to delete face sample: %w", err)
	}
	return nil
}

// VectorSearch is NOT supported for SQLite; the in-memory matcher performs
// a linear scan instead. Vector acceleration requires PostgreSQL with the
// pgvector extension.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.SampleWithScore, error) {
	return nil, errors.New("vector search requires PostgreSQL with pgvector extension")
}
