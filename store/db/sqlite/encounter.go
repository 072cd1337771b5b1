package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/facesense/store"
)

func (d *DB) CreateEncounter(ctx context.Context, create *store.Encounter) (*store.Encounter, error) {
	boxes, err := marshalBoxes(create.Boxes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal boxes: %w", err)
	}

	fields := []string{"uid", "title", "location", "notes", "occurred_ts", "thumbnail", "boxes"}
	placeholderValues := []any{
		create.UID, create.Title, create.Location, create.Notes,
		create.OccurredTs, create.Thumbnail, boxes,
	}

	stmt := `INSERT INTO encounter (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create encounter: %w", err)
	}

	return create, nil
}

func (d *DB) ListEncounters(ctx context.Context, find *store.FindEncounter) ([]*store.Encounter, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "encounter.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "encounter.uid = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, created_ts, updated_ts, title, location, notes, occurred_ts, thumbnail, boxes
		FROM encounter
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY encounter.occurred_ts DESC, encounter.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query encounters: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Encounter, 0)
	for rows.Next() {
		var encounter store.Encounter
		var boxes string

		if err := rows.Scan(
			&encounter.ID,
			&encounter.UID,
			&encounter.CreatedTs,
			&encounter.UpdatedTs,
			&encounter.Title,
			&encounter.Location,
			&encounter.Notes,
			&encounter.OccurredTs,
			&encounter.Thumbnail,
			&boxes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan encounter: %w", err)
		}

		if encounter.Boxes, err = unmarshalBoxes(boxes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal boxes: %w", err)
		}
		list = append(list, &encounter)
	}

	return list, rows.Err()
}

func (d *DB) UpdateEncounter(ctx context.Context, update *store.UpdateEncounter) error {
	set, args := []string{}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Location; v != nil {
		set, args = append(set, "location = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Notes; v != nil {
		set, args = append(set, "notes = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.OccurredTs; v != nil {
		set, args = append(set, "occurred_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Thumbnail; v != nil {
		set, args = append(set, "thumbnail = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Boxes; v != nil {
		boxes, err := marshalBoxes(*v)
		if err != nil {
			return fmt.Errorf("failed to marshal boxes: %w", err)
		}
		set, args = append(set, "boxes = "+placeholder(len(args)+1)), append(args, boxes)
	}
	if len(set) == 0 {
		return nil
	}

	set = append(set, "updated_ts = (strftime('%s', 'now'))")
	args = append(args, update.ID)

	stmt := `UPDATE encounter SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update encounter: %w", err)
	}
	return nil
}

func (d *DB) DeleteEncounter(ctx context.Context, delete *store.DeleteEncounter) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM encounter WHERE id = ?", delete.ID); err != nil {
		return fmt.Errorf("failed to delete encounter: %w", err)
	}
	return nil
}

func (d *DB) CreateEncounterPhoto(ctx context.Context, create *store.EncounterPhoto) (*store.EncounterPhoto, error) {
	boxes, err := marshalBoxes(create.Boxes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal boxes: %w", err)
	}

	fields := []string{"uid", "encounter_id", "asset_id", "data", "taken_ts", "boxes"}
	placeholderValues := []any{
		create.UID, create.EncounterID, create.AssetID, create.Data, create.TakenTs, boxes,
	}

	stmt := `INSERT INTO encounter_photo (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create encounter photo: %w", err)
	}

	return create, nil
}

func (d *DB) ListEncounterPhotos(ctx context.Context, find *store.FindEncounterPhoto) ([]*store.EncounterPhoto, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "encounter_photo.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "encounter_photo.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.EncounterID; v != nil {
		where, args = append(where, "encounter_photo.encounter_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, encounter_id, created_ts, asset_id, data, taken_ts, boxes
		FROM encounter_photo
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY encounter_photo.taken_ts ASC, encounter_photo.id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query encounter photos: %w", err)
	}
	defer rows.Close()

	list := make([]*store.EncounterPhoto, 0)
	for rows.Next() {
		var photo store.EncounterPhoto
		var boxes string

		if err := rows.Scan(
			&photo.ID,
			&photo.UID,
			&photo.EncounterID,
			&photo.CreatedTs,
			&photo.AssetID,
			&photo.Data,
			&photo.TakenTs,
			&boxes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan encounter photo: %w", err)
		}

		if photo.Boxes, err = unmarshalBoxes(boxes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal boxes: %w", err)
		}
		list = append(list, &photo)
	}

	return list, rows.Err()
}

func (d *DB) UpdateEncounterPhoto(ctx context.Context, update *store.UpdateEncounterPhoto) error {
	set, args := []string{}, []any{}

	if v := update.EncounterID; v != nil {
		set, args = append(set, "encounter_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Boxes; v != nil {
		boxes, err := marshalBoxes(*v)
		if err != nil {
			return fmt.Errorf("failed to marshal boxes: %w", err)
		}
		set, args = append(set, "boxes = "+placeholder(len(args)+1)), append(args, boxes)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE encounter_photo SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update encounter photo: %w", err)
	}
	return nil
}

func (d *DB) DeleteEncounterPhoto(ctx context.Context, delete *store.DeleteEncounterPhoto) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM encounter_photo WHERE id = ?", delete.ID); err != nil {
		return fmt.Errorf("failed to delete encounter photo: %w", err)
	}
	return nil
}

func (d *DB) UpsertParticipant(ctx context.Context, encounterID, personID int32) error {
	stmt := `INSERT INTO participant (encounter_id, person_id) VALUES (?, ?)
		ON CONFLICT (encounter_id, person_id) DO NOTHING`
	if _, err := d.db.ExecContext(ctx, stmt, encounterID, personID); err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

func (d *DB) ListParticipants(ctx context.Context, find *store.FindParticipant) ([]*store.Participant, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.EncounterID; v != nil {
		where, args = append(where, "participant.encounter_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.PersonID; v != nil {
		where, args = append(where, "participant.person_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT encounter_id, person_id FROM participant WHERE ` + strings.Join(where, " AND ")
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Participant, 0)
	for rows.Next() {
		var participant store.Participant
		if err := rows.Scan(&participant.EncounterID, &participant.PersonID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		list = append(list, &participant)
	}

	return list, rows.Err()
}
