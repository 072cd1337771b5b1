package merge

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/hrygo/facesense/store"
)

// thumbnailWidth is the target width of encounter thumbnails; height keeps
// the source aspect ratio.
const thumbnailWidth = 320

// renderThumbnail downscales a photo to thumbnail size. Returns the raw
// input when it cannot be decoded as an image.
func renderThumbnail(data []byte) []byte {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	resized := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG); err != nil {
		return data
	}
	return buf.Bytes()
}

// recomputeThumbnail rebuilds an encounter thumbnail from its
// chronologically earliest photo. An encounter with no photos gets a nil
// thumbnail. Caller holds the mutex.
func (s *Service) recomputeThumbnail(ctx context.Context, encounterID int32) error {
	photos, err := s.store.ListEncounterPhotos(ctx, &store.FindEncounterPhoto{EncounterID: &encounterID})
	if err != nil {
		return err
	}

	// Photos come back ordered by taken_ts, so the first one with image
	// data is the earliest.
	var thumbnail []byte
	for _, photo := range photos {
		if len(photo.Data) > 0 {
			thumbnail = renderThumbnail(photo.Data)
			break
		}
	}

	if err := s.store.UpdateEncounter(ctx, &store.UpdateEncounter{ID: encounterID, Thumbnail: &thumbnail}); err != nil {
		return err
	}
	s.logger.Debug("recomputed encounter thumbnail",
		slog.Int("encounter_id", int(encounterID)),
		slog.Bool("empty", thumbnail == nil))
	return nil
}
