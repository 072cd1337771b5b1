package merge

import (
	"bytes"
	"image"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/facesense/store"
)

func TestCombineNotes(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"both empty", []string{"", ""}, ""},
		{"primary only", []string{"met at work", ""}, "met at work"},
		{"secondary only", []string{"", "plays tennis"}, "plays tennis"},
		{"both", []string{"met at work", "plays tennis"}, "met at work\n\nplays tennis"},
		{"three with gap", []string{"a", "", "c"}, "a\n\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CombineNotes(tt.parts...))
		})
	}
}

func TestFoldPersonsFillsOnlyEmptyFields(t *testing.T) {
	primary := &store.Person{ID: 1, Name: "Dana", Relationship: "friend"}
	secondaries := []*store.Person{
		{ID: 2, Relationship: "colleague", Company: "Acme"},
		{ID: 3, Context: "book club", Company: "Globex"},
	}

	update := FoldPersons(primary, secondaries, false)

	require.Nil(t, update.Relationship, "non-empty primary field must not be overwritten")
	require.NotNil(t, update.Company)
	require.Equal(t, "Acme", *update.Company, "first non-empty secondary wins")
	require.NotNil(t, update.Context)
	require.Equal(t, "book club", *update.Context)
}

func TestFoldPersonsORFoldsFlags(t *testing.T) {
	primary := &store.Person{ID: 1}
	update := FoldPersons(primary, []*store.Person{{ID: 2, IsSelf: true}, {ID: 3, Favorite: true}}, false)

	require.NotNil(t, update.IsSelf)
	require.True(t, *update.IsSelf)
	require.NotNil(t, update.Favorite)
	require.True(t, *update.Favorite)
}

func TestFoldPersonsUnionsInterests(t *testing.T) {
	primary := &store.Person{ID: 1, Interests: []string{"chess", "hiking"}}
	update := FoldPersons(primary, []*store.Person{
		{ID: 2, Interests: []string{"hiking", "sailing"}},
	}, false)

	require.NotNil(t, update.Interests)
	require.Equal(t, []string{"chess", "hiking", "sailing"}, *update.Interests)
}

func TestFoldPersonsCombinesNotesOnlyWhenAsked(t *testing.T) {
	primary := &store.Person{ID: 1, Notes: "met at work"}
	secondaries := []*store.Person{{ID: 2, Notes: "plays tennis"}}

	withNotes := FoldPersons(primary, secondaries, true)
	require.NotNil(t, withNotes.Notes)
	require.Equal(t, "met at work\n\nplays tennis", *withNotes.Notes)

	withoutNotes := FoldPersons(primary, secondaries, false)
	require.Nil(t, withoutNotes.Notes)
}

func TestFoldPersonsNoSecondariesIsNoop(t *testing.T) {
	primary := &store.Person{ID: 1, Name: "Dana", Relationship: "friend", Notes: "n"}
	update := FoldPersons(primary, nil, true)

	require.Nil(t, update.Relationship)
	require.Nil(t, update.Context)
	require.Nil(t, update.Company)
	require.Nil(t, update.Notes)
	require.Nil(t, update.Interests)
	require.Nil(t, update.IsSelf)
}

func TestRenderThumbnailDownscales(t *testing.T) {
	src := imaging.New(1600, 900, image.White.C)
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, src, imaging.PNG))

	thumb := renderThumbnail(buf.Bytes())
	require.NotEmpty(t, thumb)

	decoded, err := imaging.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	require.Equal(t, thumbnailWidth, decoded.Bounds().Dx())
}

func TestRenderThumbnailKeepsUndecodableData(t *testing.T) {
	raw := []byte("not an image")
	require.Equal(t, raw, renderThumbnail(raw))
}
