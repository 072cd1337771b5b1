package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/facesense/store"
)

func (d *DB) CreatePerson(ctx context.Context, create *store.Person) (*store.Person, error) {
	interests, err := marshalStrings(create.Interests)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal interests: %w", err)
	}

	fields := []string{"uid", "name", "relationship", "context", "company", "notes", "interests", "is_self", "favorite", "primary_sample_uid"}
	placeholderValues := []any{
		create.UID, create.Name, create.Relationship, create.Context, create.Company,
		create.Notes, interests, create.IsSelf, create.Favorite, create.PrimarySampleUID,
	}

	stmt := `INSERT INTO person (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return create, nil
}

func (d *DB) ListPersons(ctx context.Context, find *store.FindPerson) ([]*store.Person, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "person.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "person.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.IsSelf; v != nil {
		where, args = append(where, "person.is_self = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Favorite; v != nil {
		where, args = append(where, "person.favorite = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, created_ts, updated_ts,
			name, relationship, context, company, notes, interests,
			is_self, favorite, primary_sample_uid
		FROM person
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY person.name ASC, person.id ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Person, 0)
	for rows.Next() {
		var person store.Person
		var interests string
		var primarySampleUID sql.NullString

		if err := rows.Scan(
			&person.ID,
			&person.UID,
			&person.CreatedTs,
			&person.UpdatedTs,
			&person.Name,
			&person.Relationship,
			&person.Context,
			&person.Company,
			&person.Notes,
			&interests,
			&person.IsSelf,
			&person.Favorite,
			&primarySampleUID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}

		if person.Interests, err = unmarshalStrings(interests); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interests: %w", err)
		}
		if primarySampleUID.Valid {
			person.PrimarySampleUID = &primarySampleUID.String
		}
		list = append(list, &person)
	}

	return list, rows.Err()
}

func (d *DB) UpdatePerson(ctx context.Context, update *store.UpdatePerson) error {
	set, args := []string{}, []any{}

	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Relationship; v != nil {
		set, args = append(set, "relationship = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Context; v != nil {
		set, args = append(set, "context = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Company; v != nil {
		set, args = append(set, "company = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Notes; v != nil {
		set, args = append(set, "notes = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Interests; v != nil {
		interests, err := marshalStrings(*v)
		if err != nil {
			return fmt.Errorf("failed to marshal interests: %w", err)
		}
		set, args = append(set, "interests = "+placeholder(len(args)+1)), append(args, interests)
	}
	if v := update.IsSelf; v != nil {
		set, args = append(set, "is_self = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Favorite; v != nil {
		set, args = append(set, "favorite = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.PrimarySampleUID; v != nil {
		set, args = append(set, "primary_sample_uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	set = append(set, "updated_ts = (strftime('%s', 'now'))")
	args = append(args, update.ID)

	stmt := `UPDATE person SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return nil
}

func (d *DB) DeletePerson(ctx context.Context, delete *store.DeletePerson) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM person WHERE id = ?", delete.ID); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}
