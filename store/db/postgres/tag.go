package postgres

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/facesense/store"
)

func (d *DB) UpsertTag(ctx context.Context, name string) (*store.Tag, error) {
	stmt := `INSERT INTO tag (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	tag := &store.Tag{}
	if err := d.db.QueryRowContext(ctx, stmt, name).Scan(&tag.ID, &tag.Name); err != nil {
		return nil, errors.Wrap(err, "failed to upsert tag")
	}
	return tag, nil
}

func (d *DB) ListTags(ctx context.Context, find *store.FindTag) ([]*store.Tag, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "tag.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "tag.name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.PersonID; v != nil {
		where = append(where, "tag.id IN (SELECT tag_id FROM person_tag WHERE person_id = "+placeholder(len(args)+1)+")")
		args = append(args, *v)
	}
	if v := find.EncounterID; v != nil {
		where = append(where, "tag.id IN (SELECT tag_id FROM encounter_tag WHERE encounter_id = "+placeholder(len(args)+1)+")")
		args = append(args, *v)
	}

	query := `SELECT id, name FROM tag WHERE ` + strings.Join(where, " AND ") + ` ORDER BY tag.name ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tags")
	}
	defer rows.Close()

	list := make([]*store.Tag, 0)
	for rows.Next() {
		var tag store.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, errors.Wrap(err, "failed to scan tag")
		}
		list = append(list, &tag)
	}

	return list, rows.Err()
}

func (d *DB) UpsertPersonTag(ctx context.Context, personID, tagID int32) error {
	stmt := `INSERT INTO person_tag (person_id, tag_id) VALUES ($1, $2)
		ON CONFLICT (person_id, tag_id) DO NOTHING`
	if _, err := d.db.ExecContext(ctx, stmt, personID, tagID); err != nil {
		return errors.Wrap(err, "failed to upsert person tag")
	}
	return nil
}

func (d *DB) UpsertEncounterTag(ctx context.Context, encounterID, tagID int32) error {
	stmt := `INSERT INTO encounter_tag (encounter_id, tag_id) VALUES ($1, $2)
		ON CONFLICT (encounter_id, tag_id) DO NOTHING`
	if _, err := d.db.ExecContext(ctx, stmt, encounterID, tagID); err != nil {
		return errors.Wrap(err, "failed to upsert encounter tag")
	}
	return nil
}
