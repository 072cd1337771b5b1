package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/facesense/store"
)

func (d *DB) CreateFaceSample(ctx context.Context, create *store.FaceSample) (*store.FaceSample, error) {
	fields := []string{"uid", "person_id", "embedding", "thumbnail", "owner_box_uid", "encounter_id"}
	placeholderValues := []any{
		create.UID, create.PersonID, pgvector.NewVector(create.Embedding),
		create.Thumbnail, create.OwnerBoxUID, create.EncounterID,
	}

	stmt := `INSERT INTO face_sample (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create face sample")
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
		return nil, errors.Wrap(err, "failed to query face samples")
	}
	defer rows.Close()

	list := make([]*store.FaceSample, 0)
	for rows.Next() {
		var sample store.FaceSample
		var vector pgvector.Vector
		var ownerBoxUID sql.NullString
		var encounterID sql.NullInt32

		if err := rows.Scan(
			&sample.ID,
			&sample.UID,
			&sample.PersonID,
			&sample.CreatedTs,
			&vector,
			&sample.Thumbnail,
			&ownerBoxUID,
			&encounterID,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan face sample")
		}

		sample.Embedding = vector.Slice()
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
		return errors.Wrap(err, "failed to update face sample")
	}
	return nil
}

func (d *DB) DeleteFaceSample(ctx context.Context, delete *store.DeleteFaceSample) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM face_sample WHERE id = $1", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete face sample")
	}
	return nil
}

// VectorSearch ranks stored face samples by cosine similarity using pgvector.
// The <=> operator computes cosine distance (1 - cosine_similarity), so
// ordering by distance ASC yields the most similar samples first.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.SampleWithScore, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			s.id, s.uid, s.person_id, s.created_ts, s.thumbnail, s.owner_box_uid, s.encounter_id,
			1 - (s.embedding <=> ` + placeholder(1) + `) AS score
		FROM face_sample s
		ORDER BY s.embedding <=> ` + placeholder(2) + `
		LIMIT ` + placeholder(3)

	vector := pgvector.NewVector(opts.Vector)
	rows, err := d.db.QueryContext(ctx, query, vector, vector, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.SampleWithScore{}
	for rows.Next() {
		var result store.SampleWithScore
		var sample store.FaceSample
		var ownerBoxUID sql.NullString
		var encounterID sql.NullInt32

		if err := rows.Scan(
			&sample.ID,
			&sample.UID,
			&sample.PersonID,
			&sample.CreatedTs,
			&sample.Thumbnail,
			&ownerBoxUID,
			&encounterID,
			&result.Score,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}

		if ownerBoxUID.Valid {
			sample.OwnerBoxUID = &ownerBoxUID.String
		}
		if encounterID.Valid {
			sample.EncounterID = &encounterID.Int32
		}
		result.Sample = &sample
		results = append(results, &result)
	}

	return results, rows.Err()
}
